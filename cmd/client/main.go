// cmd/client is a minimal reference consumer of the HTTP-over-JSON
// service boundary: one request in, one response printed out. It carries
// no market-making logic of its own — that remains out of scope, per the
// venue's own design, for a caller to implement against this contract.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
)

func main() {
	server := flag.String("server", "http://127.0.0.1:8080", "base URL of the ladderbook server")
	action := flag.String("action", "mid_price", "action: mid_price | orderbook | add_order | del_order | users | pnl_history | positions")
	side := flag.String("side", "bid", "order side: bid | ask")
	kind := flag.String("type", "limit", "order kind: limit | market | ioc")
	price := flag.String("price", "", "limit price (decimal string, omit for market orders)")
	volume := flag.String("qty", "1", "order volume (decimal string)")
	user := flag.String("user", "", "user handle")
	orderID := flag.Int64("order-id", 0, "order id, for del_order")

	flag.Parse()

	var err error
	switch strings.ToLower(*action) {
	case "mid_price":
		err = get(*server + "/mid_price")
	case "orderbook":
		err = get(*server + "/orderbook")
	case "users":
		err = get(*server + "/users")
	case "pnl_history":
		err = get(*server + "/pnl_history/" + *user)
	case "positions":
		err = get(*server + "/positions/" + *user)
	case "add_order":
		err = addOrder(*server, *side, *kind, *price, *volume, *user)
	case "del_order":
		err = delOrder(*server, *orderID)
	default:
		log.Fatalf("unknown action %q", *action)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func get(url string) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return printBody(resp)
}

func addOrder(server, side, kind, price, volume, user string) error {
	body := map[string]any{"side": side, "kind": kind, "volume": volume, "user": user}
	if price != "" {
		body["price"] = price
	}
	buf, err := json.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := http.Post(server+"/add_order", "application/json", bytes.NewReader(buf))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return printBody(resp)
}

func delOrder(server string, orderID int64) error {
	buf, err := json.Marshal(map[string]int64{"order_id": orderID})
	if err != nil {
		return err
	}
	resp, err := http.Post(server+"/del_order", "application/json", bytes.NewReader(buf))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return printBody(resp)
}

func printBody(resp *http.Response) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "%d %s\n", resp.StatusCode, string(data))
	return nil
}
