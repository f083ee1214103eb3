package app

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"toorak_vpn/internal/model"

	"github.com/gorilla/websocket"
)

var httpClient = &http.Client{Timeout: 10 * time.Second}

func (c *App) revealPacket(messageID string) (*model.RevealResponse, error) {
	u := url.URL{
		Scheme: "http",
		Host:   c.host,
		Path:   fmt.Sprintf("/packets/%s/reveal", messageID),
	}

	resp, err := httpClient.Post(u.String(), "application/json", nil)
	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()
	defer io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reveal: %s", resp.Status)
	}

	var res model.RevealResponse
	err = json.NewDecoder(resp.Body).Decode(&res)
	if err != nil {
		return nil, err
	}

	return &res, nil
}

func (c *App) initStream() (*websocket.Conn, error) {
	params := url.Values{
		"clientID": []string{c.clientID},
	}

	u := url.URL{
		Scheme:   "ws",
		Host:     c.host,
		Path:     "/stream",
		RawQuery: params.Encode(),
	}

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, err
	}

	return conn, nil
}
