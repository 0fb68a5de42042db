package world

// Face indexes the six axis directions of a block or chunk.
type Face int

const (
	FacePosX Face = iota
	FacePosY
	FacePosZ
	FaceNegX
	FaceNegY
	FaceNegZ
)

const faceCount = 6

var faceNormals = [faceCount][3]int{
	{1, 0, 0},
	{0, 1, 0},
	{0, 0, 1},
	{-1, 0, 0},
	{0, -1, 0},
	{0, 0, -1},
}

var faceNames = [faceCount]string{"+x", "+y", "+z", "-x", "-y", "-z"}

// Opposite returns the face pointing the other way, e.g. +x -> -x.
func (f Face) Opposite() Face {
	return (f + 3) % faceCount
}

func (f Face) Normal() [3]int {
	return faceNormals[f]
}

// Axis returns 0, 1 or 2 for the x, y or z axis.
func (f Face) Axis() int {
	return int(f) % 3
}

// Positive reports whether the face points along the positive axis.
func (f Face) Positive() bool {
	return f < FaceNegX
}

func (f Face) String() string {
	if f < 0 || f >= faceCount {
		return "invalid"
	}
	return faceNames[f]
}

// faceFromOffset maps a unit offset to the face it points through.
func faceFromOffset(dx, dy, dz int) (Face, bool) {
	for f, n := range faceNormals {
		if n[0] == dx && n[1] == dy && n[2] == dz {
			return Face(f), true
		}
	}
	return 0, false
}
