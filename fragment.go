package markup

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
)

const (
	// RequestedWithHeader is the header the navigator sets on its
	// requests, so the server can tell them apart from normal
	// navigations.
	RequestedWithHeader = "X-Requested-With"

	// RequestedWithValue is the value of RequestedWithHeader on navigator
	// requests.
	RequestedWithValue = "XMLHttpRequest"

	// ContentTypeJSON is the content type of JSON fragment payloads.
	ContentTypeJSON = "application/json"

	// ContentTypeMsgpack is the content type of msgpack fragment
	// payloads.
	ContentTypeMsgpack = "application/vnd.msgpack"
)

var (
	// ErrUnsupportedContentType is returned when decoding a fragment
	// payload in a format that isn't JSON or msgpack.
	ErrUnsupportedContentType = errors.New("unsupported fragment content type")
)

// IsFragmentRequest reports whether r was made by the navigator and should
// get a Fragment instead of a whole page.
func IsFragmentRequest(r *http.Request) bool {
	return r.Header.Get(RequestedWithHeader) == RequestedWithValue
}

// Fragment is what partial navigations receive: the rendered page content,
// plus the scripts and stylesheets it registered so the client can load the
// ones it doesn't have yet.
type Fragment struct {
	HTML    string  `json:"html" msgpack:"html"`
	Scripts []Asset `json:"scripts" msgpack:"scripts"`
	Styles  []Asset `json:"styles" msgpack:"styles"`
}

// NewFragment builds a Fragment from rendered content and the Registry its
// render filled. Head scripts come before body scripts.
func NewFragment(content string, reg *Registry) Fragment {
	return Fragment{
		HTML:    content,
		Scripts: append(reg.Scripts(PlaceHead), reg.Scripts(PlaceBody)...),
		Styles:  reg.Styles(),
	}
}

func wantsMsgpack(r *http.Request) bool {
	for _, accept := range strings.Split(r.Header.Get("Accept"), ",") {
		mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(accept))
		if err != nil {
			continue
		}
		if isMsgpack(mediaType) {
			return true
		}
	}
	return false
}

func isMsgpack(mediaType string) bool {
	return mediaType == ContentTypeMsgpack || mediaType == "application/x-msgpack" || mediaType == "application/msgpack"
}

// WriteFragment encodes frag to w, as msgpack if the request asked for it and
// as JSON otherwise.
func WriteFragment(w http.ResponseWriter, r *http.Request, frag Fragment) error {
	w.Header().Add("Vary", "Accept")
	w.Header().Add("Vary", RequestedWithHeader)
	w.Header().Set("Cache-Control", "no-store")
	if wantsMsgpack(r) {
		body, err := msgpack.Marshal(frag)
		if err != nil {
			return fmt.Errorf("error encoding fragment as msgpack: %w", err)
		}
		w.Header().Set("Content-Type", ContentTypeMsgpack)
		_, err = w.Write(body)
		return err
	}
	// <, >, and & stay as they are in the markup
	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(frag); err != nil {
		return fmt.Errorf("error encoding fragment as JSON: %w", err)
	}
	w.Header().Set("Content-Type", ContentTypeJSON+"; charset=utf-8")
	_, err := w.Write(body.Bytes())
	return err
}

// DecodeFragment decodes a Fragment payload of the given content type.
func DecodeFragment(contentType string, body io.Reader) (Fragment, error) {
	var frag Fragment
	mediaType := ContentTypeJSON
	if contentType != "" {
		parsed, _, err := mime.ParseMediaType(contentType)
		if err != nil {
			return frag, fmt.Errorf("error parsing content type %q: %w", contentType, err)
		}
		mediaType = parsed
	}
	switch {
	case isMsgpack(mediaType):
		err := msgpack.NewDecoder(body).Decode(&frag)
		if err != nil {
			return frag, fmt.Errorf("error decoding msgpack fragment: %w", err)
		}
	case mediaType == ContentTypeJSON || strings.HasSuffix(mediaType, "+json"):
		err := json.NewDecoder(body).Decode(&frag)
		if err != nil {
			return frag, fmt.Errorf("error decoding JSON fragment: %w", err)
		}
	default:
		return frag, fmt.Errorf("%w: %s", ErrUnsupportedContentType, mediaType)
	}
	for i := range frag.Scripts {
		frag.Scripts[i].Attr = frag.Scripts[i].Attrs.String()
	}
	for i := range frag.Styles {
		frag.Styles[i].Attr = frag.Styles[i].Attrs.String()
	}
	return frag, nil
}

// MarshalJSON encodes the attributes as a JSON object that keeps their
// order. Named attributes are encoded as "name": "value"; bare attributes are
// keyed by their index among the bare attributes, with their name as the
// value, e.g. {"0": "defer", "type": "module"}.
func (attrs Attrs) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	bare := 0
	for _, attr := range attrs {
		if attr.Name == "" {
			continue
		}
		key, val := attr.Name, attr.Value
		if attr.Bare {
			key, val = strconv.Itoa(bare), attr.Name
			bare++
		}
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(val)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes attributes encoded by MarshalJSON, keeping the order
// they appear in. Keys that are integers are read as bare attributes. Values
// that aren't strings are converted to their JSON text. An array is read as a
// list of bare attributes, which is how a list without named attributes
// encodes in PHP.
func (attrs *Attrs) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		*attrs = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	delim, _ := tok.(json.Delim)
	if delim != '{' && delim != '[' {
		return fmt.Errorf("expected attributes object, got %v", tok)
	}
	var res Attrs
	for dec.More() {
		key := ""
		if delim == '{' {
			tok, err := dec.Token()
			if err != nil {
				return err
			}
			key, _ = tok.(string)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		var val string
		if err := json.Unmarshal(raw, &val); err != nil {
			val = string(raw)
		}
		if delim == '[' {
			res = append(res, Flag(val))
			continue
		}
		res = append(res, decodedAttr(key, val))
	}
	*attrs = res
	return nil
}

// EncodeMsgpack encodes the attributes as a msgpack map in the same shape as
// MarshalJSON, written in order.
func (attrs Attrs) EncodeMsgpack(enc *msgpack.Encoder) error {
	named := make(Attrs, 0, len(attrs))
	for _, attr := range attrs {
		if attr.Name != "" {
			named = append(named, attr)
		}
	}
	if err := enc.EncodeMapLen(len(named)); err != nil {
		return err
	}
	bare := 0
	for _, attr := range named {
		key, val := attr.Name, attr.Value
		if attr.Bare {
			key, val = strconv.Itoa(bare), attr.Name
			bare++
		}
		if err := enc.EncodeString(key); err != nil {
			return err
		}
		if err := enc.EncodeString(val); err != nil {
			return err
		}
	}
	return nil
}

// DecodeMsgpack decodes attributes encoded by EncodeMsgpack. Like
// UnmarshalJSON, an array is read as a list of bare attributes.
func (attrs *Attrs) DecodeMsgpack(dec *msgpack.Decoder) error {
	code, err := dec.PeekCode()
	if err != nil {
		return err
	}
	if msgpcode.IsFixedArray(code) || code == msgpcode.Array16 || code == msgpcode.Array32 {
		flags, err := dec.DecodeSlice()
		if err != nil {
			return err
		}
		var res Attrs
		for _, flag := range flags {
			res = append(res, Flag(fmt.Sprint(flag)))
		}
		*attrs = res
		return nil
	}
	n, err := dec.DecodeMapLen()
	if err != nil {
		return err
	}
	if n < 0 {
		*attrs = nil
		return nil
	}
	res := make(Attrs, 0, n)
	for i := 0; i < n; i++ {
		key, err := dec.DecodeString()
		if err != nil {
			return err
		}
		val, err := dec.DecodeString()
		if err != nil {
			return err
		}
		res = append(res, decodedAttr(key, val))
	}
	*attrs = res
	return nil
}

func decodedAttr(key, val string) Attr {
	if _, err := strconv.Atoi(key); err == nil {
		return Flag(val)
	}
	return A(key, val)
}
