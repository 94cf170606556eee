package bili

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// SigningKeys are the two short-lived WBI keys published by the nav endpoint.
type SigningKeys struct {
	ImgKey string
	SubKey string
}

// Params are request parameters prior to signing.
type Params map[string]any

// SaltFunc derives the hash salt from a key pair.
type SaltFunc func(keys SigningKeys) string

// ConcatSalt is the default salt: imgKey followed by subKey.
func ConcatSalt(keys SigningKeys) string {
	return keys.ImgKey + keys.SubKey
}

var mixinKeyEncTab = [...]int{
	46, 47, 18, 2, 53, 8, 23, 32, 15, 50, 10, 31, 58, 3, 45, 35, 27, 43, 5, 49,
	33, 9, 42, 19, 29, 28, 14, 39, 12, 38, 41, 13, 37, 48, 7, 16, 24, 55, 40,
	61, 26, 17, 0, 1, 60, 51, 30, 4, 22, 25, 54, 21, 56, 59, 6, 63, 57, 62, 11,
	36, 20, 34, 44, 52,
}

// MixinSalt reorders imgKey+subKey through the platform's permutation table
// and keeps the first 32 characters.
func MixinSalt(keys SigningKeys) string {
	raw := keys.ImgKey + keys.SubKey
	var b strings.Builder
	for _, i := range mixinKeyEncTab {
		if i < len(raw) {
			b.WriteByte(raw[i])
		}
	}
	s := b.String()
	if len(s) > 32 {
		s = s[:32]
	}
	return s
}

// Signer builds signed listing queries. The zero value uses the wall clock
// and ConcatSalt.
type Signer struct {
	Now  func() time.Time
	Salt SaltFunc
}

// Sign signs params with imgKey and subKey using the wall clock.
func Sign(params Params, imgKey, subKey string) (string, error) {
	return Signer{}.Sign(params, SigningKeys{ImgKey: imgKey, SubKey: subKey})
}

// Sign adds wts, canonicalizes params and appends the w_rid signature.
// params is not modified.
func (s Signer) Sign(params Params, keys SigningKeys) (string, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	salt := ConcatSalt
	if s.Salt != nil {
		salt = s.Salt
	}

	values := make(map[string]string, len(params)+1)
	for k, v := range params {
		str, err := stringify(v)
		if err != nil {
			return "", fmt.Errorf("param %q: %w", k, err)
		}
		values[k] = str
	}
	values["wts"] = strconv.FormatInt(now().Unix(), 10)

	query := canonicalQuery(values)
	sum := md5.Sum([]byte(query + salt(keys)))
	return query + "&w_rid=" + hex.EncodeToString(sum[:]), nil
}

// canonicalQuery sorts keys and joins encoded pairs with '&'.
func canonicalQuery(values map[string]string) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, encodeComponent(k)+"="+encodeComponent(stripReserved(values[k])))
	}
	return strings.Join(pairs, "&")
}

// stripReserved removes the characters the platform drops before hashing.
var stripReserved = strings.NewReplacer("!", "", "'", "", "(", "", ")", "", "*", "").Replace

// encodeComponent percent-encodes like encodeURIComponent: space is %20.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func stringify(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case fmt.Stringer:
		return t.String(), nil
	case bool:
		return strconv.FormatBool(t), nil
	case int:
		return strconv.Itoa(t), nil
	case int8, int16, int32, int64:
		return fmt.Sprintf("%d", t), nil
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", t), nil
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
}

// keyFromAssetURL returns the filename stem of an asset URL: the text
// between the last '/' and the last '.'.
func keyFromAssetURL(raw string) (string, bool) {
	slash := strings.LastIndex(raw, "/")
	dot := strings.LastIndex(raw, ".")
	if slash < 0 || dot <= slash+1 {
		return "", false
	}
	return raw[slash+1 : dot], true
}
