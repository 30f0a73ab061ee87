package models

// FavouriteStatus reports a single character's favourite state for a user.
type FavouriteStatus struct {
	ID          int  `json:"id"`
	IsFavourite bool `json:"is_favourite"`
	Count       int  `json:"count"`
}

// FavouritesList is a user's favourite character ids in insertion order.
type FavouritesList struct {
	IDs   []int `json:"ids"`
	Count int   `json:"count"`
}
