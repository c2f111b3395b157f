package contract

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Confidence label constants.
const (
	CertainValue     = "Certain"     // Certain value
	ConfidentValue   = "Confident"   // Confident value
	RealisticValue   = "Realistic"   // Realistic value
	SpeculativeValue = "Speculative" // Speculative value
)

// Color variables for console output.
var (
	CertainColor     = color.New(color.FgGreen, color.Bold) // certainColor represents near guaranteed outcomes.
	ConfidentColor   = color.New(color.FgCyan)              // confidentColor represents strong likelihood.
	RealisticColor   = color.New(color.FgYellow)            // realisticColor represents even odds.
	SpeculativeColor = color.New(color.FgRed, color.Bold)   // speculativeColor represents long shots.
)

// GetPlainLabel returns a plain text label indicating the confidence level
// for a likelihood or predictability score in [0, 1]. This is the core logic
// used for CSV, JSON, and table printing.
func GetPlainLabel(score float64) string {
	switch {
	case score >= 0.95:
		return CertainValue
	case score >= 0.70:
		return ConfidentValue
	case score >= 0.50:
		return RealisticValue
	default:
		return SpeculativeValue
	}
}

// GetColorLabel returns a colored text label for console output (table).
// It uses GetPlainLabel to determine the string, and then applies the
// appropriate color.
func GetColorLabel(score float64) string {
	text := GetPlainLabel(score)

	switch text {
	case CertainValue:
		return CertainColor.Sprint(text)
	case ConfidentValue:
		return ConfidentColor.Sprint(text)
	case RealisticValue:
		return RealisticColor.Sprint(text)
	default: // "Speculative"
		return SpeculativeColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on
// the provided file path. An empty path falls back to os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
