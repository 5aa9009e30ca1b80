// Package anneal generates the timed annealing G-code block that is
// spliced into a print job after the last object finishes printing.
//
// Bed annealing works best with a glass bed and a plastic container
// placed over the object while it anneals.
package anneal

import (
	"math"
	"strconv"
	"strings"
)

// EndOfGcodeMarker is the end-of-file marker the splice step looks for
// in the final buffer. The string is kept byte-identical to the marker
// the consuming slicer emits.
const EndOfGcodeMarker = ";End sof Gcode"

// dwellSeconds is the pause between progress updates and between
// cooldown steps.
const dwellSeconds = 60

// Params holds the inputs for one annealing sequence. A heater channel
// is active iff its temperature is non-zero; an inactive channel
// contributes no wait or cooldown commands.
type Params struct {
	// BedTemp is the bed annealing temperature in C, 0 if the bed is
	// not used.
	BedTemp float64

	// ChamberTemp is the chamber annealing temperature in C, 0 if the
	// chamber is not used.
	ChamberTemp float64

	// Minutes is the hold duration at target temperature.
	Minutes int

	// StartBeep plays an audible reminder before the wait phase.
	StartBeep bool

	// EndCoolingTemp is the temperature the gradual cooldown stops at.
	EndCoolingTemp float64
}

// formatTemp renders a temperature argument without a trailing ".0" so
// that whole degrees read the way firmware examples write them.
func formatTemp(t float64) string {
	return strconv.FormatFloat(t, 'f', -1, 64)
}

// formatProgress renders a percent-complete value rounded to 2 decimals.
func formatProgress(p float64) string {
	return strconv.FormatFloat(math.Round(p*100)/100, 'f', -1, 64)
}

// dwellProgress builds the minute-by-minute hold block: a progress
// reset carrying the total remaining minutes, then one 60 second dwell
// and one progress update per elapsed minute. For zero minutes only the
// reset line is produced.
func dwellProgress(minutes int) string {
	var sb strings.Builder
	sb.WriteString("M73 P0 R")
	sb.WriteString(strconv.Itoa(minutes))
	for x := 1; x <= minutes; x++ {
		sb.WriteString("\nG4 S")
		sb.WriteString(strconv.Itoa(dwellSeconds))
		progress := float64(x) / float64(minutes) * 100
		sb.WriteString("\nM73 P")
		sb.WriteString(formatProgress(progress))
		sb.WriteString(" R")
		sb.WriteString(strconv.Itoa(minutes - x))
	}
	return sb.String()
}

// Generate returns the annealing command block for the given
// parameters: optional beep, wait-for-temperature commands for each
// active channel, the timed hold with progress reporting, a one degree
// per minute cooldown to the end temperature, and heater shutoff.
//
// The generator is a pure function of its inputs; it performs no I/O
// and never fails. An end cooling temperature at or above the anneal
// temperature simply yields an empty cooldown loop.
func Generate(p Params) string {
	var sb strings.Builder

	sb.WriteString(";Generated annealing GCODE by Krura")

	if p.StartBeep {
		sb.WriteString("\nM300 ;play beep for plastic container placement reminder")
	}

	sb.WriteString("\nM117 ")
	if p.BedTemp != 0 {
		sb.WriteString("Place plastic container over objects on bed now! ")
	}
	sb.WriteString("Waiting until annealing temp reached...")
	sb.WriteString("\nM73 P00 ;reset progress bar to 0")

	if p.BedTemp != 0 {
		sb.WriteString("\nM190 R")
		sb.WriteString(formatTemp(p.BedTemp))
		sb.WriteString(" ;wait for buildplate to reach temp in C even if cooling")
	}
	if p.ChamberTemp != 0 {
		sb.WriteString("\nM191 R")
		sb.WriteString(formatTemp(p.ChamberTemp))
		sb.WriteString(" ;wait for chamber to reach temp in C even if cooling")
	}

	sb.WriteString("\nM117 ")
	if p.BedTemp != 0 {
		sb.WriteString("Keep plastic container over objects. ")
	}
	sb.WriteString("Annealing...")
	sb.WriteString("\nM73 P00")

	sb.WriteString("\n")
	sb.WriteString(dwellProgress(p.Minutes))

	sb.WriteString("\nM117 Annealing complete. Gradually lowering bed temperature...")

	// Step down one degree per minute. Waits are only emitted for
	// channels still above the current step, so the loop thins out as
	// each channel reaches its floor.
	maxTemp := math.Max(p.BedTemp, p.ChamberTemp)
	for x := int(maxTemp) - 1; x >= int(p.EndCoolingTemp); x-- {
		if p.BedTemp != 0 && p.BedTemp > float64(x) {
			sb.WriteString("\nM190 S")
			sb.WriteString(strconv.Itoa(x))
		}
		if p.ChamberTemp != 0 && p.ChamberTemp > float64(x) {
			sb.WriteString("\nM191 S")
			sb.WriteString(strconv.Itoa(x))
		}
		sb.WriteString("\nG4 S")
		sb.WriteString(strconv.Itoa(dwellSeconds))
	}

	if p.BedTemp != 0 {
		sb.WriteString("\nM140 S0")
	}
	if p.ChamberTemp != 0 {
		sb.WriteString("\nM141 S0")
	}
	sb.WriteString("\nM117 Annealing complete.")

	return sb.String()
}

// Splice inserts the annealing block into the last buffer of the job,
// immediately before the end-of-gcode marker when it is present, or
// appended at the end when it is not. Marker absence is a normal path,
// not an error. All other buffers are left untouched and the returned
// slice has the same length as the input.
func Splice(buffers []string, block string) []string {
	if len(buffers) == 0 {
		return buffers
	}
	last := buffers[len(buffers)-1]
	if idx := strings.Index(last, EndOfGcodeMarker); idx >= 0 {
		buffers[len(buffers)-1] = last[:idx] + block + "\n" + last[idx:]
	} else {
		buffers[len(buffers)-1] = last + block + "\n"
	}
	return buffers
}
