package routes

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/giannis84/character-favourites/internal/auth"
	"github.com/giannis84/character-favourites/internal/catalog"
	"github.com/giannis84/character-favourites/internal/config"
	"github.com/giannis84/character-favourites/internal/handlers"
	"github.com/giannis84/character-favourites/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

const maxRequestBody = 1 << 20

// RegisterAPIRoutes sets up the login, catalog and favourites API routes.
// HTTP concerns are handled here, while business logic is delegated to the handlers package.
func RegisterAPIRoutes(
	store handlers.FavouritesStore,
	source handlers.CharacterSource,
	authn handlers.Authenticator,
	authCfg auth.AuthConfig,
	rateLimit config.RateLimitConfig,
) func(r chi.Router) {
	return func(r chi.Router) {
		r.Route("/api/v1", func(r chi.Router) {
			if rateLimit.Requests > 0 {
				r.Use(httprate.Limit(
					rateLimit.Requests,
					rateLimit.Window,
					httprate.WithKeyFuncs(httprate.KeyByIP),
					httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
						respondWithError(w, http.StatusTooManyRequests, "Rate limit exceeded")
					}),
				))
			}
			r.Use(requireJSONAccept)

			r.With(requireJSONContentType).Post("/auth/login", loginRoute(authn, authCfg))

			r.Group(func(r chi.Router) {
				r.Use(auth.JWTMiddleware(authCfg))

				r.Route("/characters", func(r chi.Router) {
					r.Get("/", browseCharactersRoute(source, store))
					r.Get("/{characterID}", getCharacterRoute(source, store))
				})

				r.Route("/favourites", func(r chi.Router) {
					r.Get("/", listFavouritesRoute(store))
					r.Delete("/", clearFavouritesRoute(store))
					r.Get("/count", countFavouritesRoute(store))
					r.With(requireJSONContentType).Post("/toggle", toggleFavouritesRoute(store))
					r.Get("/{characterID}", favouriteStatusRoute(store))
					r.Post("/{characterID}/toggle", toggleFavouriteRoute(store))
				})
			})
		})
	}
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type CountResponse struct {
	Count int `json:"count"`
}

func loginRoute(authn handlers.Authenticator, authCfg auth.AuthConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req handlers.LoginRequest
		if err := decodeBody(w, r, &req); err != nil {
			logging.Log(ctx).Layer("routes").Op("login").Err(err).
				Warn("failed to decode request body")
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		email := auth.NormalizeEmail(req.Email)
		logging.Log(ctx).Layer("routes").Op("login").User(email).
			Info("received login request")

		resp, err := handlers.Login(authn, authCfg, &req, time.Now())
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				logging.Log(ctx).Layer("routes").Op("login").User(email).
					Warn("invalid credentials")
				respondWithError(w, http.StatusUnauthorized, "Incorrect email or password")
				return
			}
			respondWithHandlerError(w, r, "login", email, err)
			return
		}

		logging.Log(ctx).Layer("routes").Op("login").User(email).
			Int("status_code", http.StatusOK).Info("login successful")
		respondWithJSON(w, http.StatusOK, resp)
	}
}

func browseCharactersRoute(source handlers.CharacterSource, store handlers.FavouritesStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := auth.UserIDFromContext(ctx)
		query := r.URL.Query()

		page, err := handlers.ParsePage(query.Get("page"))
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		name := query.Get("name")

		logging.Log(ctx).Layer("routes").Op("browseCharacters").User(userID).
			Int("page", page).Str("name", name).Info("received browse characters request")

		result, err := handlers.BrowseCharacters(ctx, source, store, userID, page, name)
		if err != nil {
			respondWithHandlerError(w, r, "browseCharacters", userID, err)
			return
		}

		logging.Log(ctx).Layer("routes").Op("browseCharacters").User(userID).
			Int("count", len(result.Results)).Int("status_code", http.StatusOK).
			Info("characters retrieved successfully")
		respondWithJSON(w, http.StatusOK, result)
	}
}

func getCharacterRoute(source handlers.CharacterSource, store handlers.FavouritesStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := auth.UserIDFromContext(ctx)

		characterID, err := handlers.ParseCharacterID(chi.URLParam(r, "characterID"))
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		result, err := handlers.GetCharacter(ctx, source, store, userID, characterID)
		if err != nil {
			respondWithHandlerError(w, r, "getCharacter", userID, err)
			return
		}

		logging.Log(ctx).Layer("routes").Op("getCharacter").User(userID).Character(characterID).
			Int("status_code", http.StatusOK).Info("character retrieved successfully")
		respondWithJSON(w, http.StatusOK, result)
	}
}

func listFavouritesRoute(store handlers.FavouritesStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := auth.UserIDFromContext(ctx)

		result := handlers.ListFavourites(store, userID)

		logging.Log(ctx).Layer("routes").Op("listFavourites").User(userID).
			Int("count", result.Count).Int("status_code", http.StatusOK).
			Info("favourites retrieved successfully")
		respondWithJSON(w, http.StatusOK, result)
	}
}

func countFavouritesRoute(store handlers.FavouritesStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := auth.UserIDFromContext(r.Context())
		respondWithJSON(w, http.StatusOK, CountResponse{Count: store.CountFor(userID)})
	}
}

func favouriteStatusRoute(store handlers.FavouritesStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := auth.UserIDFromContext(r.Context())

		characterID, err := handlers.ParseCharacterID(chi.URLParam(r, "characterID"))
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		respondWithJSON(w, http.StatusOK, handlers.FavouriteStatus(store, userID, characterID))
	}
}

func toggleFavouriteRoute(store handlers.FavouritesStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := auth.UserIDFromContext(ctx)

		characterID, err := handlers.ParseCharacterID(chi.URLParam(r, "characterID"))
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		logging.Log(ctx).Layer("routes").Op("toggleFavourite").User(userID).Character(characterID).
			Info("received toggle favourite request")

		result := handlers.ToggleFavourite(ctx, store, userID, characterID)

		logging.Log(ctx).Layer("routes").Op("toggleFavourite").User(userID).Character(characterID).
			Bool("is_favourite", result.IsFavourite).Int("count", result.Count).
			Int("status_code", http.StatusOK).Info("favourite toggled successfully")
		respondWithJSON(w, http.StatusOK, result)
	}
}

func toggleFavouritesRoute(store handlers.FavouritesStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := auth.UserIDFromContext(ctx)

		var req handlers.ToggleFavouritesRequest
		if err := decodeBody(w, r, &req); err != nil {
			logging.Log(ctx).Layer("routes").Op("toggleFavourites").User(userID).Err(err).
				Warn("failed to decode request body")
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		logging.Log(ctx).Layer("routes").Op("toggleFavourites").User(userID).Characters(req.IDs).
			Info("received bulk toggle request")

		result, err := handlers.ToggleFavourites(ctx, store, userID, &req)
		if err != nil {
			respondWithHandlerError(w, r, "toggleFavourites", userID, err)
			return
		}

		logging.Log(ctx).Layer("routes").Op("toggleFavourites").User(userID).
			Int("count", result.Count).Int("status_code", http.StatusOK).
			Info("favourites toggled successfully")
		respondWithJSON(w, http.StatusOK, result)
	}
}

func clearFavouritesRoute(store handlers.FavouritesStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := auth.UserIDFromContext(ctx)

		handlers.ClearFavourites(ctx, store, userID)

		logging.Log(ctx).Layer("routes").Op("clearFavourites").User(userID).
			Int("status_code", http.StatusOK).Info("favourites cleared successfully")
		respondWithJSON(w, http.StatusOK, map[string]string{"message": "Favourites cleared successfully"})
	}
}

// respondWithHandlerError maps handler and catalog errors to HTTP statuses.
func respondWithHandlerError(w http.ResponseWriter, r *http.Request, op, userID string, err error) {
	ctx := r.Context()

	var validationErr *handlers.ValidationError
	var apiErr *catalog.APIError
	switch {
	case errors.As(err, &validationErr):
		logging.Log(ctx).Layer("routes").Op(op).User(userID).Err(err).
			Warn("validation error")
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, catalog.ErrNotFound):
		logging.Log(ctx).Layer("routes").Op(op).User(userID).
			Warn("character not found")
		respondWithError(w, http.StatusNotFound, "Character not found")
	case errors.As(err, &apiErr):
		logging.Log(ctx).Layer("routes").Op(op).User(userID).Err(err).
			Int("upstream_status", apiErr.StatusCode).Error("catalog request failed")
		respondWithError(w, http.StatusBadGateway, "Character catalog unavailable")
	default:
		logging.Log(ctx).Layer("routes").Op(op).User(userID).Err(err).
			Error("request failed")
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// requireJSONAccept rejects clients that cannot take a JSON response.
func requireJSONAccept(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(r.Header.Get("Accept")) {
			respondWithError(w, http.StatusNotAcceptable, "Accept header must include application/json")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireJSONContentType rejects request bodies that are not JSON.
func requireJSONContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mediaType != "application/json" {
			respondWithError(w, http.StatusUnsupportedMediaType, "Content-Type header must be application/json")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func acceptsJSON(accept string) bool {
	for _, part := range strings.Split(accept, ",") {
		mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		switch mediaType {
		case "application/json", "application/*", "*/*":
			return true
		}
	}
	return false
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	return json.NewDecoder(r.Body).Decode(v)
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Error: message})
}
