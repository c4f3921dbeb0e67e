package domain

type CommandCreate struct {
	Paths     []string
	SizeBytes int64
	Quiet     bool
}

type CommandVerify struct {
	Paths     []string
	SizeBytes int64
	Workers   int
}

type CommandRemove struct {
	Paths []string
}
