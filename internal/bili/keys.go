package bili

import (
	"context"
	"encoding/json"
)

type navData struct {
	WbiImg *struct {
		ImgURL string `json:"img_url"`
		SubURL string `json:"sub_url"`
	} `json:"wbi_img"`
}

// FetchSigningKeys reads the current WBI key pair from the nav endpoint.
// Keys are never cached; every call hits the network.
func (c *Client) FetchSigningKeys(ctx context.Context) (SigningKeys, error) {
	const op = "fetch signing keys"

	body, err := c.get(ctx, op, PathNav, nil)
	if err != nil {
		return SigningKeys{}, err
	}
	// Logged-out sessions answer with code -101 but still carry wbi_img.
	env, err := decode(op, body, false)
	if err != nil {
		return SigningKeys{}, err
	}

	var data navData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return SigningKeys{}, shapeError(op, body, "decode data: %w", err)
	}
	if data.WbiImg == nil {
		return SigningKeys{}, shapeError(op, body, "missing data.wbi_img")
	}

	imgKey, ok := keyFromAssetURL(data.WbiImg.ImgURL)
	if !ok {
		return SigningKeys{}, shapeError(op, body, "bad img_url %q", data.WbiImg.ImgURL)
	}
	subKey, ok := keyFromAssetURL(data.WbiImg.SubURL)
	if !ok {
		return SigningKeys{}, shapeError(op, body, "bad sub_url %q", data.WbiImg.SubURL)
	}
	return SigningKeys{ImgKey: imgKey, SubKey: subKey}, nil
}
