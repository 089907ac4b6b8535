package debug

import "github.com/misbitfont/msbtfont/internal/common"

// FormatName returns the human-readable name of a surface format value.
func FormatName(format int) string {
	switch format {
	case common.FormatIndexed8:
		return "Indexed8"
	case common.FormatIndexed16:
		return "Indexed16"
	case common.FormatIndexed24:
		return "Indexed24"
	case common.FormatIndexed32:
		return "Indexed32"
	}
	return "Unknown"
}

// OriginName returns the human-readable name of a surface origin value.
func OriginName(origin int) string {
	switch origin {
	case common.OriginUpperLeft:
		return "UpperLeft"
	case common.OriginLowerLeft:
		return "LowerLeft"
	}
	return "Unknown"
}
