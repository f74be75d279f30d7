package temporal

// FramesToTime converts an analysis frame index to seconds
func FramesToTime(frame, sampleRate, hopSize int) float64 {
	return float64(frame) * float64(hopSize) / float64(sampleRate)
}

// FramesToTimes converts a sequence of frame indices to seconds
func FramesToTimes(frames []int, sampleRate, hopSize int) []float64 {
	times := make([]float64, len(frames))
	for i, f := range frames {
		times[i] = FramesToTime(f, sampleRate, hopSize)
	}
	return times
}

// framesPerMinute is the number of analysis frames in one minute
func framesPerMinute(sampleRate, hopSize int) float64 {
	return 60.0 * float64(sampleRate) / float64(hopSize)
}
