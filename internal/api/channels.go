package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// ErrEmptyChannelName is reported before any request is sent.
var ErrEmptyChannelName = errors.New("channel name must not be empty")

// JoinedChannels fetches the channels the session user belongs to, in
// server order.
func (c *Client) JoinedChannels(ctx context.Context) ([]Channel, error) {
	var resp channelsResponse
	if err := c.getJSON(ctx, "/api/channels/joined", &resp); err != nil {
		return nil, err
	}
	return resp.Channels, nil
}

// PublicChannels fetches all public channels, in server order.
func (c *Client) PublicChannels(ctx context.Context) ([]Channel, error) {
	var resp channelsResponse
	if err := c.getJSON(ctx, "/api/channels/public", &resp); err != nil {
		return nil, err
	}
	return resp.Channels, nil
}

// SearchChannels is a server-side filter over public channels. The result
// is a rendered view only and never replaces the authoritative list.
func (c *Client) SearchChannels(ctx context.Context, keyword string) ([]Channel, error) {
	var resp channelsResponse
	path := "/api/channels/search?q=" + url.QueryEscape(keyword)
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Channels, nil
}

// CreateChannel makes a new channel; the creator is auto-joined server-side.
func (c *Client) CreateChannel(ctx context.Context, name, description string, isPrivate bool) (*Channel, error) {
	if name == "" {
		return nil, ErrEmptyChannelName
	}
	var resp channelResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/channels", map[string]any{
		"name":        name,
		"description": description,
		"is_private":  isPrivate,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Channel, nil
}

// JoinChannel adds the session user to a channel's roster.
func (c *Client) JoinChannel(ctx context.Context, channelID int) error {
	var resp Envelope
	return c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/api/channels/%d/join", channelID), nil, &resp)
}

// LeaveChannel removes the session user from a channel's roster.
func (c *Client) LeaveChannel(ctx context.Context, channelID int) error {
	var resp Envelope
	return c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/api/channels/%d/leave", channelID), nil, &resp)
}

// ChannelMessages fetches the full message history of a channel, oldest
// first. Requires membership.
func (c *Client) ChannelMessages(ctx context.Context, channelID int) ([]Message, error) {
	var resp messagesResponse
	if err := c.getJSON(ctx, fmt.Sprintf("/api/channels/%d/messages", channelID), &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

// ChannelDetail fetches a single channel with its up-to-date roster count.
func (c *Client) ChannelDetail(ctx context.Context, channelID int) (*Channel, error) {
	var resp channelResponse
	if err := c.getJSON(ctx, fmt.Sprintf("/api/channels/%d", channelID), &resp); err != nil {
		return nil, err
	}
	return resp.Channel, nil
}

// Health pings the server's health endpoint. The health envelope reports
// status "ok" rather than "success", so it bypasses the usual branch.
func (c *Client) Health(ctx context.Context) error {
	var resp Envelope
	err := c.getJSON(ctx, "/api/health", &resp)
	if err == nil || resp.Status == "ok" {
		return nil
	}
	return err
}
