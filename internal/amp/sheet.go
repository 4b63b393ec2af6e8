package amp

import (
	"bytes"
	"fmt"
	"os"

	"codeberg.org/go-pdf/fpdf"
)

// WriteSheet renders the patch sheet for snap to outputPath.
func WriteSheet(snap Snapshot, outputPath string) error {
	data, err := GenerateSheet(snap)
	if err != nil {
		return err
	}
	return os.WriteFile(outputPath, data, 0644)
}

// GenerateSheet renders a printable A4 patch sheet: the current program's
// amplifier and effect settings followed by the stored preset table.
func GenerateSheet(snap Snapshot) ([]byte, error) {
	if snap.Model.Name == "" {
		return nil, fmt.Errorf("no amplifier state to render")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(snap.Model.Name), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Current program: %s", tr(snap.Current.Name)), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	section(pdf, "Amplifier")
	a := snap.Current.Amp
	rows := [][2]string{
		{"Model", a.Model.String()},
		{"Volume", knob(a.Volume)},
		{"Gain", knob(a.Gain)},
		{"Gain 2", knob(a.Gain2)},
		{"Master", knob(a.MasterVol)},
		{"Treble", knob(a.Treble)},
		{"Middle", knob(a.Middle)},
		{"Bass", knob(a.Bass)},
		{"Presence", knob(a.Presence)},
		{"Bias", knob(a.Bias)},
		{"Noise gate", fmt.Sprintf("%d (threshold %d, depth %s)", a.NoiseGate, a.Threshold, knob(a.Depth))},
		{"Cabinet", fmt.Sprintf("%d", a.Cabinet)},
		{"Sag", fmt.Sprintf("%d", a.Sag)},
		{"Brightness", onOff(a.Brightness)},
		{"USB gain", knob(a.USBGain)},
	}
	for _, r := range rows {
		pdf.CellFormat(40, 6, r[0], "B", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, tr(r[1]), "B", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	section(pdf, "Effects")
	if len(snap.Current.Effects) == 0 {
		pdf.CellFormat(0, 6, "none", "", 1, "L", false, 0, "")
	}
	for _, e := range snap.Current.Effects {
		pos := "pre"
		if e.PostAmp {
			pos = "post"
		}
		pdf.CellFormat(15, 6, fmt.Sprintf("%d", e.Slot+1), "B", 0, "C", false, 0, "")
		pdf.CellFormat(55, 6, tr(e.Effect.String()), "B", 0, "L", false, 0, "")
		pdf.CellFormat(15, 6, pos, "B", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, fmt.Sprintf("%d %d %d %d %d %d", e.Knob1, e.Knob2, e.Knob3, e.Knob4, e.Knob5, e.Knob6), "B", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	section(pdf, fmt.Sprintf("Presets (%d)", len(snap.Presets)))
	pdf.SetFont("Helvetica", "", 9)
	// Two columns so a 100-preset table fits on two pages.
	const colW = 90
	for i, p := range snap.Presets {
		ln := 0
		if i%2 == 1 {
			ln = 1
		}
		pdf.CellFormat(colW, 5, fmt.Sprintf("%3d  %s", p.Slot, tr(p.Name)), "", ln, "L", false, 0, "")
	}

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, fmt.Errorf("generate PDF: %w", err)
	}
	return out.Bytes(), nil
}

func section(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(0, 7, title, "", 1, "L", true, 0, "")
	pdf.SetFont("Helvetica", "", 10)
}

// knob formats a 0..255 control value as 0..10.
func knob(v byte) string {
	return fmt.Sprintf("%.1f", float64(v)*10/255)
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
