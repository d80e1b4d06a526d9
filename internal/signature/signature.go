// Package signature validates that payment-gateway responses were not
// tampered with in transit.  The scheme is the gateway's documented one:
// sort the response fields, concatenate them as a query string, append the
// shared secret and hash the result with SHA-256.
package signature

import (
    "crypto/sha256"
    "crypto/subtle"
    "encoding/hex"
    "sort"
    "strings"
)

// Field is the name of the signature entry inside a gateway response map.
const Field = "signature"

// Sign computes the expected signature for a set of response fields.  Any
// entry named by Field is ignored.  Keys are sorted lexicographically and
// joined as key1=value1&key2=value2&..., the secret is appended verbatim,
// and the SHA-256 digest is rendered as lowercase hex.
func Sign(fields map[string]string, secret string) string {
    keys := make([]string, 0, len(fields))
    for k := range fields {
        if k == Field {
            continue
        }
        keys = append(keys, k)
    }
    sort.Strings(keys)

    var b strings.Builder
    for i, k := range keys {
        if i > 0 {
            b.WriteByte('&')
        }
        b.WriteString(k)
        b.WriteByte('=')
        b.WriteString(fields[k])
    }
    b.WriteString(secret)

    sum := sha256.Sum256([]byte(b.String()))
    return hex.EncodeToString(sum[:])
}

// Verify checks the signature carried inside fields against the digest of
// the remaining fields.  A missing or empty signature is invalid and no
// digest is computed for it.  The comparison is case-insensitive and
// constant-time, so response times do not reveal how many leading
// characters of a forged signature were correct.
func Verify(fields map[string]string, secret string) bool {
    received, ok := fields[Field]
    if !ok || received == "" {
        return false
    }
    expected := Sign(fields, secret)
    return subtle.ConstantTimeCompare([]byte(strings.ToLower(received)), []byte(expected)) == 1
}
