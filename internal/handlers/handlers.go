package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/giannis84/character-favourites/internal/auth"
	"github.com/giannis84/character-favourites/internal/catalog"
	"github.com/giannis84/character-favourites/internal/logging"
	"github.com/giannis84/character-favourites/internal/models"
)

// FavouritesStore is the part of favourites.Store the handlers depend on.
type FavouritesStore interface {
	Toggle(ctx context.Context, user string, itemID int) bool
	ToggleBulk(ctx context.Context, user string, itemIDs []int) int
	ClearUser(ctx context.Context, user string)
	IsFavourite(user string, itemID int) bool
	CountFor(user string) int
	UserFavourites(user string) []int
}

// CharacterSource is the part of catalog.Client the handlers depend on.
type CharacterSource interface {
	Characters(ctx context.Context, page int, name string) (*models.CharacterPage, error)
	Character(ctx context.Context, id int) (*models.Character, error)
}

// Authenticator checks login credentials.
type Authenticator interface {
	Authenticate(email, password string) (*models.User, error)
}

type ToggleFavouritesRequest struct {
	IDs []int `json:"ids"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

func ListFavourites(store FavouritesStore, userID string) *models.FavouritesList {
	ids := store.UserFavourites(userID)
	return &models.FavouritesList{IDs: ids, Count: len(ids)}
}

func FavouriteStatus(store FavouritesStore, userID string, characterID int) *models.FavouriteStatus {
	return &models.FavouriteStatus{
		ID:          characterID,
		IsFavourite: store.IsFavourite(userID, characterID),
		Count:       store.CountFor(userID),
	}
}

func ToggleFavourite(ctx context.Context, store FavouritesStore, userID string, characterID int) *models.FavouriteStatus {
	added := store.Toggle(ctx, userID, characterID)

	logging.Log(ctx).Layer("handler").Op("toggleFavourite").User(userID).Character(characterID).
		Bool("is_favourite", added).Debug("favourite toggled")

	return &models.FavouriteStatus{
		ID:          characterID,
		IsFavourite: added,
		Count:       store.CountFor(userID),
	}
}

func ToggleFavourites(ctx context.Context, store FavouritesStore, userID string, req *ToggleFavouritesRequest) (*models.FavouritesList, error) {
	if err := validateCharacterIDs(req.IDs); err != nil {
		return nil, err
	}

	count := store.ToggleBulk(ctx, userID, req.IDs)

	logging.Log(ctx).Layer("handler").Op("toggleFavourites").User(userID).Characters(req.IDs).
		Int("count", count).Debug("favourites toggled")

	return ListFavourites(store, userID), nil
}

func ClearFavourites(ctx context.Context, store FavouritesStore, userID string) {
	store.ClearUser(ctx, userID)
}

// BrowseCharacters fetches a catalog page and marks the user's favourites.
// A search without matches yields an empty page rather than an error.
func BrowseCharacters(ctx context.Context, source CharacterSource, store FavouritesStore, userID string, page int, name string) (*models.FavouriteCharacterPage, error) {
	if err := validateSearchName(name); err != nil {
		return nil, err
	}

	result, err := source.Characters(ctx, page, name)
	if errors.Is(err, catalog.ErrNoResults) {
		return &models.FavouriteCharacterPage{
			Results:         []models.FavouriteCharacter{},
			FavouritesCount: store.CountFor(userID),
		}, nil
	}
	if err != nil {
		return nil, err
	}

	annotated := make([]models.FavouriteCharacter, 0, len(result.Results))
	for _, c := range result.Results {
		annotated = append(annotated, models.FavouriteCharacter{
			Character:   c,
			IsFavourite: store.IsFavourite(userID, c.ID),
		})
	}

	return &models.FavouriteCharacterPage{
		Info:            result.Info,
		Results:         annotated,
		FavouritesCount: store.CountFor(userID),
	}, nil
}

func GetCharacter(ctx context.Context, source CharacterSource, store FavouritesStore, userID string, characterID int) (*models.FavouriteCharacter, error) {
	c, err := source.Character(ctx, characterID)
	if err != nil {
		return nil, err
	}
	return &models.FavouriteCharacter{
		Character:   *c,
		IsFavourite: store.IsFavourite(userID, characterID),
	}, nil
}

// Login checks credentials against the user directory and issues a token
// whose subject is the user's normalised email.
func Login(authn Authenticator, cfg auth.AuthConfig, req *LoginRequest, now time.Time) (*LoginResponse, error) {
	if err := validateLogin(req); err != nil {
		return nil, err
	}

	user, err := authn.Authenticate(req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := auth.IssueToken(cfg, user, now)
	if err != nil {
		return nil, err
	}
	return &LoginResponse{Token: token, ExpiresAt: expiresAt, User: user}, nil
}
