// Package format renders track resolution outcomes into chat payloads.
//
// The markup dialect is HTML (bold and anchors); every track or artist
// string is escaped before composition.
package format

import (
	"fmt"
	"html"
	"net/url"
	"regexp"

	"github.com/lyrixbot/lyrix/internal/track"
)

// Context selects the consumption surface for a payload.
type Context int

const (
	// Direct is a plain command reply.
	Direct Context = iota
	// Share is a message posted into a chat for others, carrying the
	// track tag so a reply can recover the provider reference.
	Share
	// Inline is a result for an inline query.
	Inline
)

// Button is an action link attached to a payload.
type Button struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Payload is a provider-agnostic display payload: HTML-marked-up text plus
// optional action buttons and thumbnail.
type Payload struct {
	Text     string   `json:"text"`
	Buttons  []Button `json:"buttons,omitempty"`
	ThumbURL string   `json:"thumb_url,omitempty"`
}

// Fixed message templates for the non-playing outcomes.
const (
	MsgNotLinked = "😔, I couldn't find you in my database. Have you registered yet?"
	MsgIdle      = "Looks like you are not playing anything on Spotify."
	MsgAd        = "😌👍 Ad time"
	MsgFailed    = "Hmm, I couldn't retrieve your track right now. Try again in a bit. 🤷"

	MsgNoLyrics = "Couldn't find the lyrics. 😔😔😔"
	MsgNotASong = "Not a valid song from lyrix. Can't play this."
)

// trackTag embeds a provider-native track reference in shared text so a
// later reply can recover it. Wire format: lyrix@(<provider uri>).
var trackTag = regexp.MustCompile(`lyrix@\(([^)]*)\)`)

// TrackTag renders the embedded reference for a provider URI.
func TrackTag(uri string) string {
	return fmt.Sprintf("lyrix@(%s)", uri)
}

// ExtractTrackURI recovers a provider track URI from text containing a
// track tag. ok is false when no tag is present.
func ExtractTrackURI(text string) (uri string, ok bool) {
	m := trackTag.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Format renders an outcome for the given context. userName is the display
// name of the requesting user, shown in Share context.
func Format(o track.Outcome, ctx Context, userName string) Payload {
	switch o.Kind {
	case track.KindNotLinked:
		return Payload{Text: MsgNotLinked}
	case track.KindAuthFailed:
		return Payload{Text: fmt.Sprintf(
			"🔑 Spotify turned down your credentials: %s\nTry linking your account again.",
			html.EscapeString(o.Detail),
		)}
	case track.KindIdle:
		return Payload{Text: MsgIdle}
	case track.KindAdvertisement:
		return Payload{Text: MsgAd}
	case track.KindPlaying:
		return formatPlaying(o, ctx, userName)
	default:
		return Payload{Text: MsgFailed}
	}
}

func formatPlaying(o track.Outcome, ctx Context, userName string) Payload {
	song := o.Song
	title := html.EscapeString(song.Track)
	artists := html.EscapeString(song.ArtistLine())

	// With a canonical URL the title becomes a link and action buttons
	// appear; otherwise plain text, no buttons.
	var line string
	var buttons []Button
	if song.URL != "" {
		line = fmt.Sprintf(`<a href="%s"><b>%s</b> by <b>%s</b></a>`,
			html.EscapeString(song.URL), title, artists)
		buttons = playingButtons(song)
	} else {
		line = fmt.Sprintf("<b>%s</b> by <b>%s</b>", title, artists)
	}

	var text string
	switch ctx {
	case Share:
		who := html.EscapeString(userName)
		if who == "" {
			who = "Someone"
		}
		text = fmt.Sprintf("%s is currently playing %s", who, line)
		if uri := providerURI(o); uri != "" {
			text += "\n\n" + TrackTag(uri)
		}
	case Inline:
		text = "Now playing " + line
	default:
		text = "Getting lyrics for " + line
	}

	return Payload{Text: text, Buttons: buttons}
}

// playingButtons builds the play action plus search deeplinks for a fixed
// set of alternate services.
func playingButtons(song track.Song) []Button {
	slug := song.Track + " " + song.ArtistLine()
	query := url.QueryEscape(slug)
	return []Button{
		{Label: "▶️ Play this", URL: song.URL},
		{Label: "▶️ YT Music", URL: "https://music.youtube.com/search?q=" + query},
		{Label: "▶️ Spotify", URL: "https://open.spotify.com/search/" + url.PathEscape(slug)},
		{Label: "▶️ Soundcloud", URL: "https://soundcloud.com/search?q=" + query},
	}
}

func providerURI(o track.Outcome) string {
	if o.Raw == nil || o.Raw.Item == nil {
		return ""
	}
	return o.Raw.Item.URI
}
