package soundtrack

// SaveData is the host save container a channel reads and writes its fields
// into. Missing or non-numeric ints read as 0.
type SaveData interface {
	SetInt(key string, v int)
	Int(key string) int
	SetString(key, v string)
	String(key string) string
}

// Save field names, prefixed with the channel kind ("music.queue").
const (
	KeyPosition    = "position"
	KeyQueue       = "queue"
	KeyResume      = "resume"
	KeyLastQueue   = "last_queue"
	keyPrefixSplit = "."
)

func saveKey(k Kind, field string) string {
	return k.String() + keyPrefixSplit + field
}
