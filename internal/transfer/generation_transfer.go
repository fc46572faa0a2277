package transfer

type GenerationInput struct {
	Topic       string
	Tone        string
	RecentPosts []string
}

type GenerationResult struct {
	Content string
	Prompt  string
	Model   string
}
