package kde

const (
	DefaultGridSize = 200
	DefaultCut      = 3.0

	// values further than this many standard deviations from the mean are left out
	// of the estimate, 0 keeps everything
	DefaultClipZScore = 0.0

	MinPointCnt = 2
)
