package fetch

// MaxBodyBytes exposes the remote body limit to tests.
const MaxBodyBytes = maxBodyBytes
