package spotify

// NowPlaying is the provider's player state, reduced to the fields the bot
// consumes. It is kept only long enough to extract display extras and is
// never persisted.
type NowPlaying struct {
	Playing bool
	Item    *Item
}

// Item is the track occupying the playback slot.
type Item struct {
	Name        string
	Artists     []string // ordered as reported by the provider
	URI         string   // provider-native reference, e.g. spotify:track:...
	ExternalURL string   // canonical open.spotify.com URL, may be empty
	AlbumArtURL string
}
