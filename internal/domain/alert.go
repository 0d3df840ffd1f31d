package domain

// SeverityHigh is the only severity the pipeline currently emits. There is no
// severity gradation: anything that clears the threat threshold maps here.
const SeverityHigh = "high"

// Alert is a persisted map marker derived from one unsafe article.
// Description doubles as the deduplication key: the alert store never admits
// two alerts with byte-identical descriptions.
type Alert struct {
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Severity    string  `json:"severity"`
	Description string  `json:"description"`
	City        string  `json:"city"`
}

// NewAlert builds an alert from an article and its resolved place.
func NewAlert(article Article, city string, coord Coord) Alert {
	return Alert{
		Lat:         coord.Lat,
		Lng:         coord.Lng,
		Severity:    SeverityHigh,
		Description: article.Title + " - " + article.Description,
		City:        city,
	}
}
