package fetch

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/nao1215/corpusfetch/internal/model"
)

// Request is the relative HTTP GET a unit maps to.
type Request struct {
	Path  string
	Query map[string]string
}

// Endpoint maps units to requests and decodes response bodies.
// Decode must not fail on malformed bodies: it returns a Payload with a
// nil Text instead. The only error it reports is ErrRateLimited.
type Endpoint interface {
	Request(unit model.WorkUnit) Request
	Decode(body []byte) (model.Payload, error)
}

// Sefaria is the Sefaria text API. The Hebrew text lives in the "he" field.
type Sefaria struct{}

// Request implements Endpoint. Commentary units address
// "{Variant} on {Ref}", e.g. "Rashi on Berakhot.2a".
func (Sefaria) Request(unit model.WorkUnit) Request {
	ref := unit.Ref
	query := map[string]string{
		"lang":    "he",
		"context": "0",
	}
	if unit.Variant.IsBase() {
		query["commentary"] = "0"
	} else {
		ref = string(unit.Variant) + " on " + ref
	}
	return Request{
		Path:  "/api/texts/" + url.PathEscape(ref),
		Query: query,
	}
}

// Decode implements Endpoint.
func (Sefaria) Decode(body []byte) (model.Payload, error) {
	payload := model.Payload{Raw: body}
	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		return payload, nil
	}
	payload.Text = doc["he"]
	return payload, nil
}

// WikisourceAPI fetches page wikitext through the MediaWiki query API.
type WikisourceAPI struct{}

// mediaWikiResponse is the subset of a formatversion=2 revisions query.
type mediaWikiResponse struct {
	Error *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
	Query struct {
		Pages []struct {
			Title     string `json:"title"`
			Missing   bool   `json:"missing"`
			Revisions []struct {
				Slots struct {
					Main struct {
						Content string `json:"content"`
					} `json:"main"`
				} `json:"slots"`
			} `json:"revisions"`
		} `json:"pages"`
	} `json:"query"`
}

// Request implements Endpoint.
func (WikisourceAPI) Request(unit model.WorkUnit) Request {
	return Request{
		Path: "/w/api.php",
		Query: map[string]string{
			"action":        "query",
			"format":        "json",
			"formatversion": "2",
			"prop":          "revisions",
			"rvprop":        "content",
			"rvslots":       "main",
			"titles":        unit.Ref,
		},
	}
}

// Decode implements Endpoint. Missing pages decode to a nil Text.
func (WikisourceAPI) Decode(body []byte) (model.Payload, error) {
	payload := model.Payload{Raw: body}
	var resp mediaWikiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return payload, nil
	}
	if resp.Error != nil {
		switch resp.Error.Code {
		case "ratelimited", "maxlag":
			return payload, ErrRateLimited
		}
		return payload, nil
	}
	if len(resp.Query.Pages) == 0 {
		return payload, nil
	}
	page := resp.Query.Pages[0]
	if page.Missing || len(page.Revisions) == 0 {
		return payload, nil
	}
	payload.Text = page.Revisions[0].Slots.Main.Content
	return payload, nil
}

// WikisourceHTML fetches rendered wiki pages. The payload text is the HTML body.
type WikisourceHTML struct{}

// Request implements Endpoint.
func (WikisourceHTML) Request(unit model.WorkUnit) Request {
	return Request{Path: WikiPath(unit.Ref)}
}

// Decode implements Endpoint.
func (WikisourceHTML) Decode(body []byte) (model.Payload, error) {
	return model.Payload{Text: string(body), Raw: body}, nil
}

// WikiPath returns the /wiki/ path of a title. Subpage slashes are kept.
func WikiPath(title string) string {
	segments := strings.Split(strings.ReplaceAll(title, " ", "_"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return "/wiki/" + strings.Join(segments, "/")
}
