package game

// Word is one fill-the-blank entry: the word to spell plus a display emoji.
type Word struct {
	Text  string `json:"text"`
	Emoji string `json:"emoji"`
}

// WordSource supplies the word list for fill-the-blank mode. An error or an
// empty list makes the mode unavailable rather than crashing the round.
type WordSource interface {
	Words() ([]Word, error)
}

// StaticWords is a WordSource over a fixed in-memory list, used for local
// practice and tests.
type StaticWords []Word

func (s StaticWords) Words() ([]Word, error) {
	return s, nil
}
