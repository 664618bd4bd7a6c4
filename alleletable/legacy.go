package alleletable

import "fmt"

// legacyMarkers is the Hydrangea panel that the lab spreadsheet was built
// around, in spreadsheet column order.
var legacyMarkers = []string{"339", "407", "121", "73", "285", "223", "441", "157", "95", "311"}

const legacySlots = 5

// LegacyHeader returns the Name column followed by 5 slot columns for each
// marker of the 10-marker legacy panel.
func LegacyHeader() []string {
	out := make([]string, 0, 1+len(legacyMarkers)*legacySlots)
	out = append(out, "Name")
	for _, m := range legacyMarkers {
		for slot := 1; slot <= legacySlots; slot++ {
			out = append(out, fmt.Sprintf("%s-%d", m, slot))
		}
	}

	return out
}
