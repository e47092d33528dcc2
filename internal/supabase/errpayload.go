package supabase

import (
	"strings"

	"github.com/go-faster/jx"
)

// errorMessage pulls a human-readable message out of an error payload.
// PostgREST uses {"message": ...}; GoTrue answers with any of
// "error_description", "msg", or "message" depending on the endpoint. When
// the body is not a JSON object, a trimmed snippet of it is returned.
func errorMessage(body []byte) string {
	var desc, msg, message string

	d := jx.DecodeBytes(body)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "error_description":
			v, err := d.Str()
			desc = v
			return err
		case "msg":
			v, err := d.Str()
			msg = v
			return err
		case "message":
			v, err := d.Str()
			message = v
			return err
		default:
			return d.Skip()
		}
	})
	if err == nil {
		// GoTrue's precedence: error_description, then msg, then message.
		for _, v := range []string{desc, msg, message} {
			if v != "" {
				return v
			}
		}
	}

	snippet := strings.TrimSpace(string(body))
	if len(snippet) > 200 {
		snippet = snippet[:200]
	}
	if snippet == "" {
		snippet = "no response body"
	}
	return snippet
}
