package voxel

// TypeFromString maps a voxel record's block_type field to a Type:
// "crane" is Crane, anything else (including "trestle" and "support")
// is Trestle.
func TypeFromString(s string) Type {
	if s == "crane" {
		return Crane
	}
	return Trestle
}
