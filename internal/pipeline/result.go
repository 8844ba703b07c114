package pipeline

// Job is one enhancement request.
type Job struct {
	JobID    string `json:"job_id"`
	MediaURL string `json:"media_url"`
	UserID   string `json:"user_id"`
}

// EnhancementResult is what a media enhancer produces: the uploaded
// enhanced media plus its thumbnail.
type EnhancementResult struct {
	MediaURL     string  `json:"media_url"`
	ThumbnailURL string  `json:"thumbnail_url"`
	MusicURL     *string `json:"music_url"`
	AIStyle      string  `json:"ai_style"`
}

// Result is the full processing outcome for one job.
type Result struct {
	JobID        string   `json:"job_id"`
	MediaType    string   `json:"media_type"`
	MediaURL     string   `json:"media_url"`
	ThumbnailURL string   `json:"thumbnail_url"`
	MusicURL     *string  `json:"music_url"`
	AIStyle      string   `json:"ai_style"`
	Caption      string   `json:"caption"`
	Captions     []string `json:"captions"`
}
