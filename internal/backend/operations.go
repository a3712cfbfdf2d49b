package backend

import (
	"context"
	"net/url"
	"strconv"

	"github.com/mswatii/cs2-tracker/internal/apierror"
	"github.com/mswatii/cs2-tracker/internal/models"
	"github.com/valyala/fasthttp"
)

// ListTrackers returns every tracker of the user
func (c *Client) ListTrackers(ctx context.Context, userID string) ([]models.Tracker, error) {
	var trackers []models.Tracker
	err := c.do(ctx, fasthttp.MethodGet, "/track", url.Values{"userId": {userID}}, nil, &trackers)
	if err != nil {
		return nil, err
	}
	return trackers, nil
}

// CreateTracker registers a new tracker and returns it with its server-assigned id
func (c *Client) CreateTracker(ctx context.Context, t models.NewTracker) (*models.Tracker, error) {
	var created models.Tracker
	if err := c.do(ctx, fasthttp.MethodPost, "/track", nil, t, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateTracker changes the interest and targets of a tracker
func (c *Client) UpdateTracker(ctx context.Context, id, userID string, u models.TrackerUpdate) (*models.Tracker, error) {
	var updated models.Tracker
	err := c.do(ctx, fasthttp.MethodPut, "/track/"+url.PathEscape(id), url.Values{"userId": {userID}}, u, &updated)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteTracker removes a tracker
func (c *Client) DeleteTracker(ctx context.Context, id, userID string) error {
	return c.do(ctx, fasthttp.MethodDelete, "/track/"+url.PathEscape(id), url.Values{"userId": {userID}}, nil, nil)
}

// GetUser returns the account, or a not-found error when it doesn't exist
func (c *Client) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, fasthttp.MethodGet, "/user/"+url.PathEscape(userID), nil, nil, &u); err != nil {
		return nil, err
	}
	if u.ID == "" {
		u.ID = userID
	}
	return &u, nil
}

// CreateUser creates an account delivering alerts to webhook and returns its id
func (c *Client) CreateUser(ctx context.Context, webhook string) (string, error) {
	var ref models.UserRef
	if err := c.do(ctx, fasthttp.MethodPost, "/user", nil, models.UserSettings{DiscordWebhook: webhook}, &ref); err != nil {
		return "", err
	}
	if ref.UserID == "" {
		return "", apierror.Transport("create user returned no user id", nil)
	}
	return ref.UserID, nil
}

// UpdateUser changes the webhook of an account
func (c *Client) UpdateUser(ctx context.Context, userID, webhook string) error {
	return c.do(ctx, fasthttp.MethodPut, "/user/"+url.PathEscape(userID), nil, models.UserSettings{DiscordWebhook: webhook}, nil)
}

// RecoverUser finds an account by id or webhook. A response without a user
// id is treated the same as a 404.
func (c *Client) RecoverUser(ctx context.Context, r models.RecoverRequest) (string, error) {
	var ref models.UserRef
	if err := c.do(ctx, fasthttp.MethodPost, "/user/recover", nil, r, &ref); err != nil {
		return "", err
	}
	if ref.UserID == "" {
		return "", apierror.NotFound("")
	}
	return ref.UserID, nil
}

// SearchCatalog runs a market search through the backend proxy
func (c *Client) SearchCatalog(ctx context.Context, query string, start, count int) (*models.SearchResult, error) {
	q := url.Values{
		"query": {query},
		"start": {strconv.Itoa(start)},
		"count": {strconv.Itoa(count)},
	}
	var res models.SearchResult
	if err := c.do(ctx, fasthttp.MethodGet, "/search-skins", q, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

type imageResponse struct {
	ImageURL string `json:"imageUrl"`
}

// FetchListingImage asks the backend for the image shown on a market listing page
func (c *Client) FetchListingImage(ctx context.Context, listingURL string) (string, error) {
	var res imageResponse
	if err := c.do(ctx, fasthttp.MethodGet, "/steam-image", url.Values{"url": {listingURL}}, nil, &res); err != nil {
		return "", err
	}
	if res.ImageURL == "" {
		return "", apierror.NotFound("no image for listing")
	}
	return res.ImageURL, nil
}
