package mustang

// ReassemblePayload joins the payload-bearing ranges of a NewerUSB response
// burst into one document.
//
// Frame layout:
//
//	byte 1  tag (FrameFirst, FrameMiddle, FrameLast; anything else is skipped)
//	byte 2  length of the frame body, counted from byte 3
//	byte 3  first frame only: number of metadata bytes following it
//
// The first frame's data starts after its metadata; middle and last frames
// carry data from byte 3. Frames before reassemblyStartAt answer the init
// commands and never carry document data.
func ReassemblePayload(packets [][PacketSize]byte) []byte {
	var doc []byte
	for i := reassemblyStartAt; i < len(packets); i++ {
		p := packets[i]
		end := frameDataOffset + int(p[frameLenOffset])
		var start int
		switch p[frameTagOffset] {
		case FrameFirst:
			start = frameMetaOffset + 1 + int(p[frameMetaOffset])
		case FrameMiddle, FrameLast:
			start = frameDataOffset
		default:
			continue
		}
		end = min(end, PacketSize)
		if start >= end {
			continue
		}
		doc = append(doc, p[start:end]...)
	}
	return doc
}
