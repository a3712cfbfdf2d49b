package models

// SearchResult is the payload of the backend's catalog search, which proxies
// the Steam market search
type SearchResult struct {
	Success    bool         `json:"success"`
	Start      int          `json:"start"`
	PageSize   int          `json:"pagesize"`
	TotalCount int          `json:"total_count"`
	Results    []SearchItem `json:"results"`
}

// SearchItem is one raw market listing. Type and icon may arrive flat or
// nested in the asset description depending on the backend version.
type SearchItem struct {
	Name             string            `json:"name"`
	HashName         string            `json:"hash_name"`
	SellPriceText    string            `json:"sell_price_text"`
	Type             string            `json:"type"`
	IconURL          string            `json:"icon_url"`
	ImageURL         string            `json:"imageUrl"`
	AssetDescription *AssetDescription `json:"asset_description,omitempty"`
}

// AssetDescription holds the Steam asset fields of a listing
type AssetDescription struct {
	Type    string `json:"type"`
	IconURL string `json:"icon_url"`
}

// DisplayName returns the listing name, falling back to the hash name
func (s SearchItem) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.HashName
}

// RarityText returns the type string the rarity is derived from
func (s SearchItem) RarityText() string {
	if s.Type != "" {
		return s.Type
	}
	if s.AssetDescription != nil {
		return s.AssetDescription.Type
	}
	return ""
}

// Image returns the listing image as a URL, or "" when none was sent
func (s SearchItem) Image() string {
	if s.ImageURL != "" {
		return s.ImageURL
	}
	if s.IconURL != "" {
		return ImageURL(s.IconURL)
	}
	if s.AssetDescription != nil {
		return ImageURL(s.AssetDescription.IconURL)
	}
	return ""
}

// SearchCandidate is a normalized search suggestion. Candidates are
// synthesized for every wear of every base name seen in the raw results, so
// Price is empty for wears the backend did not return.
type SearchCandidate struct {
	Name        string `json:"name"`
	BaseName    string `json:"baseName"`
	Wear        Wear   `json:"wear"`
	ImageURL    string `json:"imageUrl,omitempty"`
	RarityColor string `json:"rarityColor,omitempty"`
	Price       string `json:"price,omitempty"`
}
