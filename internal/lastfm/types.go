package lastfm

// imageEntry is one album image in a track.getInfo response, sizes
// ascending.
type imageEntry struct {
	URL  string `json:"#text"`
	Size string `json:"size"`
}

// trackInfoResponse is the JSON response for track.getInfo.
type trackInfoResponse struct {
	Track struct {
		Name   string `json:"name"`
		Artist struct {
			Name string `json:"name"`
		} `json:"artist"`
		Album struct {
			Title string       `json:"title"`
			Image []imageEntry `json:"image"`
		} `json:"album"`
		Wiki struct {
			Summary string `json:"summary"`
		} `json:"wiki"`
	} `json:"track"`
}

// apiError represents a Last.fm API error response.
type apiError struct {
	Error   int    `json:"error"`
	Message string `json:"message"`
}
