package report

import "fmt"

// Summary counts fixture outcomes. Every attempted fixture is counted in
// exactly one of Passed, Failed and Exited.
type Summary struct {
	Total  int
	Passed int
	Failed int
	Exited int
}

// Percent formats part of whole to one decimal place.
func Percent(part, whole int) string {
	if whole == 0 {
		return "0.0 %"
	}
	return fmt.Sprintf("%.1f %%", 100*float64(part)/float64(whole))
}

func (s Summary) String() string {
	return fmt.Sprintf("\n\n      **** ALL %d TESTS COMPLETED! TEST SUMMARY ****\n"+
		"           %d of %d Tests PASSED - %s\n"+
		"           %d of %d Tests FAILED - %s\n"+
		"           %d of %d Tests UNEXPECTEDLY EXITED - %s\n",
		s.Total,
		s.Passed, s.Total, Percent(s.Passed, s.Total),
		s.Failed, s.Total, Percent(s.Failed, s.Total),
		s.Exited, s.Total, Percent(s.Exited, s.Total))
}
