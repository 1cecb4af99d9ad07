package ports

// Hasher defines the interface for computing content hashes.
//
//go:generate mockgen -destination=mocks/hasher_mock.go -package=mocks -source=hasher.go
type Hasher interface {
	// HashFile returns the hash of the file at path.
	HashFile(path string) (uint64, error)
	// HashBytes returns the hash of data.
	HashBytes(data []byte) uint64
}
