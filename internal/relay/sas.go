package relay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// DefaultTokenTTL is how long a listener token stays valid.
const DefaultTokenTTL = time.Hour

// SharedAccessSignature builds a relay SAS token for resource, signed with
// the named shared access key and valid until expiry.
func SharedAccessSignature(resource, keyName, key string, expiry time.Time) string {
	encodedResource := url.QueryEscape(resource)
	expires := strconv.FormatInt(expiry.Unix(), 10)

	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(encodedResource + "\n" + expires))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return fmt.Sprintf("SharedAccessSignature sr=%s&sig=%s&se=%s&skn=%s",
		encodedResource, url.QueryEscape(signature), expires, url.QueryEscape(keyName))
}

// resourceURI is the audience a listener token is issued for.
func resourceURI(host, path string) string {
	return "http://" + host + "/" + path
}
