package animation

// Get the scene time in seconds for a frame index.
func TimeAt(frame, fps uint32) float32 {
	return float32(frame) * (1.0 / float32(fps))
}

// Get the number of frames for an animation of the given duration. The
// duration is truncated to whole seconds.
func FrameCount(duration float32, fps uint32) uint32 {
	if duration <= 0 {
		return 0
	}
	return uint32(duration) * fps
}
