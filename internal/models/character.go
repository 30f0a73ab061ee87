// Character catalog model definitions

package models

type CharacterStatus string

const (
	StatusAlive   CharacterStatus = "Alive"
	StatusDead    CharacterStatus = "Dead"
	StatusUnknown CharacterStatus = "unknown"
)

// Location is a named place reference as returned by the catalog API.
type Location struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type Character struct {
	ID       int             `json:"id"`
	Name     string          `json:"name"`
	Status   CharacterStatus `json:"status"`
	Species  string          `json:"species"`
	Type     string          `json:"type"`
	Gender   string          `json:"gender"`
	Origin   Location        `json:"origin"`
	Location Location        `json:"location"`
	Image    string          `json:"image"`
	Episode  []string        `json:"episode"`
	URL      string          `json:"url"`
	Created  string          `json:"created"`
}

// PageInfo carries the pagination metadata of a catalog listing.
type PageInfo struct {
	Count int     `json:"count"`
	Pages int     `json:"pages"`
	Next  *string `json:"next"`
	Prev  *string `json:"prev"`
}

type CharacterPage struct {
	Info    PageInfo    `json:"info"`
	Results []Character `json:"results"`
}

// FavouriteCharacter is a catalog character annotated for the requesting user.
type FavouriteCharacter struct {
	Character
	IsFavourite bool `json:"is_favourite"`
}

type FavouriteCharacterPage struct {
	Info            PageInfo             `json:"info"`
	Results         []FavouriteCharacter `json:"results"`
	FavouritesCount int                  `json:"favourites_count"`
}
