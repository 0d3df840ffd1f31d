package domain

// RawArticle is the record shape returned by the GNews-style search API.
type RawArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
	Source      struct {
		Name string `json:"name"`
	} `json:"source"`
}

// Article is the normalized form persisted to the article store. PublishedAt
// stays a string: the store is sorted by lexical comparison of the upstream
// RFC 3339 timestamps, not by parsed time.
type Article struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
	Source      string `json:"source"`
}

// FormatArticle flattens a raw API record into an Article. Fields absent in
// the payload are already zero-valued, so every record formats successfully.
func FormatArticle(raw RawArticle) Article {
	return Article{
		Title:       raw.Title,
		Description: raw.Description,
		Content:     raw.Content,
		URL:         raw.URL,
		PublishedAt: raw.PublishedAt,
		Source:      raw.Source.Name,
	}
}

// ResolutionText is the text fed to the classifier and resolver: title,
// description, and content joined with single spaces.
func (a Article) ResolutionText() string {
	return a.Title + " " + a.Description + " " + a.Content
}
