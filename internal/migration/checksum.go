package migration

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash/crc32"
	"strconv"
	"strings"
)

// ChecksumPolicy selects how migration bodies are fingerprinted. A ledger is
// bound to a single policy; switching policies on an existing ledger shows up
// as a checksum mismatch on the next run.
type ChecksumPolicy string

// Supported checksum policies.
const (
	// PolicySHA256 is the hex-encoded SHA-256 digest of the whole body.
	PolicySHA256 ChecksumPolicy = "sha256"
	// PolicyCRC32 is the line-accumulated CRC-32 used by Flyway-style
	// history tables, rendered as a signed 32-bit decimal string.
	PolicyCRC32 ChecksumPolicy = "crc32"
)

// ParsePolicy validates a policy name from configuration.
func ParsePolicy(name string) (ChecksumPolicy, error) {
	switch ChecksumPolicy(name) {
	case PolicySHA256:
		return PolicySHA256, nil
	case PolicyCRC32:
		return PolicyCRC32, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
	}
}

// Checksum fingerprints a migration body under the given policy.
func Checksum(policy ChecksumPolicy, body string) string {
	if policy == PolicyCRC32 {
		return checksumCRC32(body)
	}

	return checksumSHA256(body)
}

func checksumSHA256(body string) string {
	h := sha256.Sum256([]byte(body))

	return hex.EncodeToString(h[:])
}

// checksumCRC32 folds an IEEE CRC-32 over the body line by line: the running
// value after line i seeds line i+1, the first line seeds with zero. Line
// terminators (\n, \r\n) are excluded from the accumulation, so two bodies
// with the same line count but different line contents still diverge. The
// final unsigned value is reinterpreted as a signed 32-bit integer.
func checksumCRC32(body string) string {
	var sum uint32

	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSuffix(line, "\r")
		sum = crc32.Update(sum, crc32.IEEETable, []byte(line))
	}

	return strconv.FormatInt(int64(int32(sum)), 10)
}
