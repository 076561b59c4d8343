package objectstore

import (
	"crypto/rand"
	"strings"
	"time"
)

const (
	base62Alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	nanoidAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

	// timestampWidth is the number of trailing base62 digits of the
	// millisecond timestamp kept in a short ID.
	timestampWidth = 5

	// randomWidth is the number of random suffix characters. Sized so that
	// sustained same-millisecond generation stays collision-free in
	// practice (64^8 possibilities per millisecond).
	randomWidth = 8
)

// base62Encode encodes a non-negative integer using the 0-9a-zA-Z alphabet.
func base62Encode(n int64) string {
	if n == 0 {
		return string(base62Alphabet[0])
	}
	var sb []byte
	for n > 0 {
		sb = append(sb, base62Alphabet[n%62])
		n /= 62
	}
	// reverse
	for i, j := 0, len(sb)-1; i < j; i, j = i+1, j-1 {
		sb[i], sb[j] = sb[j], sb[i]
	}
	return string(sb)
}

// nanoID returns a URL-safe random string of the given length. The alphabet
// has 64 symbols so each byte of entropy maps to exactly one character.
func nanoID(size int) string {
	buf := make([]byte, size)
	// crypto/rand.Read never fails on supported platforms; it panics
	// internally if the kernel source is unavailable.
	_, _ = rand.Read(buf)
	out := make([]byte, size)
	for i, b := range buf {
		out[i] = nanoidAlphabet[int(b)&63]
	}
	return string(out)
}

// ShortID returns a compact, collision-resistant object basename component:
// the trailing base62 digits of the current millisecond timestamp plus a
// random suffix. The scheme is stateless so concurrent writers need no
// coordination.
func ShortID(now time.Time) string {
	encoded := base62Encode(now.UnixMilli())
	if len(encoded) > timestampWidth {
		encoded = encoded[len(encoded)-timestampWidth:]
	}
	return encoded + "_" + nanoID(randomWidth)
}

// ObjectName builds the full object key for an uploaded asset:
// a UTC date prefix for grouping plus a short ID and the file extension.
// Example: 20241205/a3f2K_V1Stq9x0.jpg
func ObjectName(ext string, now time.Time) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return now.UTC().Format("20060102") + "/" + ShortID(now) + ext
}
