// Package signer builds AWS Signature Version 4 authorization headers for
// Product Advertising API 5 requests.
//
// Signing is pure: for a fixed SigningContext and Envelope (including its
// timestamp) Sign always returns the same header value.
package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// CanonicalForm is derived from an Envelope and never stored.
type CanonicalForm struct {
	// CanonicalHeaders is the sorted "name:value\n" block.
	CanonicalHeaders string

	// SignedHeaders is the sorted, semicolon-joined list of header names.
	SignedHeaders string

	// PayloadHash is hex(SHA-256(body)).
	PayloadHash string

	// Request is the full canonical request string.
	Request string
}

// Sign returns the Authorization header value for env.
func Sign(sc SigningContext, env *Envelope) (string, error) {
	if err := sc.Validate(); err != nil {
		return "", err
	}

	form, err := Canonicalize(env)
	if err != nil {
		return "", err
	}

	date := env.Date()
	stringToSign := StringToSign(sc, env, form)
	key := DeriveSigningKey(sc.SecretKey, date, sc.Region, sc.Service)
	signature := hex.EncodeToString(hmacSHA256(key, []byte(stringToSign)))

	return fmt.Sprintf("%s Credential=%s/%s, SignedHeaders=%s, Signature=%s",
		Algorithm, sc.AccessKey, CredentialScope(sc, date), form.SignedHeaders, signature), nil
}

// Canonicalize builds the canonical request for env.
func Canonicalize(env *Envelope) (CanonicalForm, error) {
	if env == nil {
		return CanonicalForm{}, &SigningError{Reason: "envelope is nil"}
	}

	headers := make(map[string]string, len(env.Headers))
	for name, value := range env.Headers {
		lower := strings.ToLower(name)
		if _, dup := headers[lower]; dup {
			return CanonicalForm{}, &SigningError{Reason: fmt.Sprintf("duplicate header %q", lower)}
		}
		headers[lower] = value
	}

	for _, name := range requiredHeaders {
		if _, ok := headers[name]; !ok {
			return CanonicalForm{}, &SigningError{Reason: fmt.Sprintf("missing required header %q", name)}
		}
	}
	if headers[HeaderAmzDate] != env.AmzDate() {
		return CanonicalForm{}, &SigningError{
			Reason: fmt.Sprintf("x-amz-date %q does not match envelope timestamp %q", headers[HeaderAmzDate], env.AmzDate()),
		}
	}
	if strings.Contains(env.Path, "?") {
		return CanonicalForm{}, &SigningError{Reason: "path must not carry a query string"}
	}

	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		b.WriteString(name)
		b.WriteByte(':')
		b.WriteString(headers[name])
		b.WriteByte('\n')
	}

	form := CanonicalForm{
		CanonicalHeaders: b.String(),
		SignedHeaders:    strings.Join(names, ";"),
		PayloadHash:      hashHex(env.Body),
	}
	form.Request = strings.Join([]string{
		strings.ToUpper(env.Method),
		env.Path,
		"",
		form.CanonicalHeaders,
		form.SignedHeaders,
		form.PayloadHash,
	}, "\n")

	return form, nil
}

// StringToSign returns ALGORITHM\nTIMESTAMP\nSCOPE\nhex(sha256(canonical request)).
func StringToSign(sc SigningContext, env *Envelope, form CanonicalForm) string {
	return strings.Join([]string{
		Algorithm,
		env.AmzDate(),
		CredentialScope(sc, env.Date()),
		hashHex([]byte(form.Request)),
	}, "\n")
}

// CredentialScope returns date/region/service/aws4_request.
func CredentialScope(sc SigningContext, date string) string {
	return strings.Join([]string{date, sc.Region, sc.Service, TerminalString}, "/")
}

// DeriveSigningKey runs the four-step HMAC chain: "AWS4"+secret, then date,
// region, service and the terminal string.
func DeriveSigningKey(secret, date, region, service string) []byte {
	kDate := hmacSHA256([]byte(KeyPrefix+secret), []byte(date))
	kRegion := hmacSHA256(kDate, []byte(region))
	kService := hmacSHA256(kRegion, []byte(service))
	return hmacSHA256(kService, []byte(TerminalString))
}

func hmacSHA256(key, data []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	return mac.Sum(nil)
}

func hashHex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
