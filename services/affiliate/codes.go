package affiliate

import (
	"context"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// preClaimAlphabet drops 0, O, 1 and I.
	preClaimAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	PreClaimCodeLength = 6
	MaxCodeAttempts    = 10

	// TempCodePrefix marks the placeholder left on a user whose code was transferred away.
	TempCodePrefix = "TEMP_"
)

var customCodePattern = regexp.MustCompile(`^[A-Z0-9]{4,12}$`)

func randomString(alphabet string, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return string(b)
}

// GenerateAffiliateCode builds a code from the first two letters of firstName and three
// random characters. Collisions are possible; use EnsureUniqueAffiliateCode.
func GenerateAffiliateCode(firstName, lastName string) string {
	prefix := namePrefix(firstName)
	if prefix == "" {
		prefix = "XX"
	}
	for len(prefix) < 2 {
		prefix += "X"
	}
	return prefix + randomString(codeAlphabet, 3)
}

func namePrefix(name string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(strings.TrimSpace(name)) {
		if r > unicode.MaxASCII || !unicode.IsLetter(r) {
			continue
		}
		b.WriteRune(r)
		if b.Len() == 2 {
			break
		}
	}
	return b.String()
}

// UniqueFunc reports whether code is free.
type UniqueFunc func(ctx context.Context, code string) (bool, error)

// EnsureUniqueAffiliateCode retries GenerateAffiliateCode until isUnique accepts a code.
// After MaxCodeAttempts it returns an "AF" code without checking. The result is only
// unique at check time; the unique index settles races.
func EnsureUniqueAffiliateCode(ctx context.Context, firstName, lastName string, isUnique UniqueFunc) (string, error) {
	for i := 0; i < MaxCodeAttempts; i++ {
		code := GenerateAffiliateCode(firstName, lastName)
		ok, err := isUnique(ctx, code)
		if err != nil {
			return "", err
		}
		if ok {
			return code, nil
		}
	}
	return fallbackCode(), nil
}

func fallbackCode() string {
	suffix := strings.ToUpper(strconv.FormatInt(rand.Int63n(36*36*36), 36))
	for len(suffix) < 3 {
		suffix = "0" + suffix
	}
	return "AF" + suffix
}

// GeneratePreClaimCode returns a six character code without look-alike characters.
func GeneratePreClaimCode() string {
	return randomString(preClaimAlphabet, PreClaimCodeLength)
}

// NormalizeCode upper-cases and trims user input.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidCustomCode reports whether a user-chosen code has an acceptable shape.
func ValidCustomCode(code string) bool {
	return customCodePattern.MatchString(code)
}

// TempCode is the placeholder given to a user whose code was transferred away.
func TempCode(userID string) string {
	id := userID
	if len(id) > 8 {
		id = id[:8]
	}
	return TempCodePrefix + id
}

// IsTempCode reports whether code is a transfer placeholder.
func IsTempCode(code string) bool {
	return strings.HasPrefix(code, TempCodePrefix)
}
