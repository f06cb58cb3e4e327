package adaptive

import (
	"fmt"
	"strings"
)

// Modality is the way a letter is tested.
type Modality int

const (
	// Video asks the learner to sign the letter in front of the camera.
	Video Modality = iota
	// Text shows the sign image and asks the learner to type the letter.
	Text
)

// Modalities lists every modality in a fixed order.
var Modalities = [...]Modality{Video, Text}

// String returns the lower-case modality name.
func (m Modality) String() string {
	switch m {
	case Video:
		return "video"
	case Text:
		return "text"
	default:
		return fmt.Sprintf("modality(%d)", int(m))
	}
}

// ParseModality accepts "video" or "text" in any case.
func ParseModality(s string) (Modality, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "video":
		return Video, nil
	case "text":
		return Text, nil
	default:
		return 0, fmt.Errorf("unknown modality %q", s)
	}
}

func (m Modality) valid() bool {
	return m == Video || m == Text
}
