package skills

// Landmark names an anatomical point reported by the pose extractor.
type Landmark string

// Landmark vocabulary understood by the catalog.
const (
	LeftShoulder  Landmark = "LEFT_SHOULDER"
	RightShoulder Landmark = "RIGHT_SHOULDER"
	LeftElbow     Landmark = "LEFT_ELBOW"
	RightElbow    Landmark = "RIGHT_ELBOW"
	LeftWrist     Landmark = "LEFT_WRIST"
	RightWrist    Landmark = "RIGHT_WRIST"
	LeftHip       Landmark = "LEFT_HIP"
	RightHip      Landmark = "RIGHT_HIP"
	LeftKnee      Landmark = "LEFT_KNEE"
	RightKnee     Landmark = "RIGHT_KNEE"
	LeftAnkle     Landmark = "LEFT_ANKLE"
	RightAnkle    Landmark = "RIGHT_ANKLE"

	// MidHip is derived from LeftHip and RightHip; extractors do not report it.
	MidHip Landmark = "MID_HIP"
)

var knownLandmarks = map[Landmark]struct{}{
	LeftShoulder: {}, RightShoulder: {},
	LeftElbow: {}, RightElbow: {},
	LeftWrist: {}, RightWrist: {},
	LeftHip: {}, RightHip: {},
	LeftKnee: {}, RightKnee: {},
	LeftAnkle: {}, RightAnkle: {},
	MidHip: {},
}

// Known reports whether l belongs to the landmark vocabulary.
func (l Landmark) Known() bool {
	_, ok := knownLandmarks[l]
	return ok
}

func (l Landmark) String() string { return string(l) }
