package rediskey

import "fmt"

// Key prefixes shared by the API and worker binaries.
const (
	SequencePrefix      = "seq"
	LockPrefix          = "lock"
	VerifyAttemptPrefix = "airdrop:verify:attempts"
)

func NamespaceKey(namespace, key string) string {
	return fmt.Sprintf("%s:%s", namespace, key)
}

// BuildSequenceKey returns "seq:{prefix}:{day}"
func BuildSequenceKey(prefix, day string) string {
	return NamespaceKey(SequencePrefix, fmt.Sprintf("%s:%s", prefix, day))
}

// BuildLockKey returns "lock:{name}"
func BuildLockKey(name string) string {
	return NamespaceKey(LockPrefix, name)
}

// BuildVerifyAttemptKey returns "airdrop:verify:attempts:{transactionID}"
func BuildVerifyAttemptKey(transactionID string) string {
	return NamespaceKey(VerifyAttemptPrefix, transactionID)
}
