package api

import (
	"encoding/json"
	"errors"

	"github.com/idilsaglam/grocer/internal/model"
)

// The service is not consistent about payload shapes: users arrive flat or
// wrapped under "user"/"data", item collections arrive bare or under
// "items"/"data", single items flat or under "data"/"item". Each decoder
// tries an explicit ordered list of extraction rules and reports a
// DecodeError when none applies.

func payloadMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var env struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return ""
	}
	return env.Message
}

// wireUser tolerates both "id" and Mongo's "_id".
type wireUser struct {
	ID    string `json:"id"`
	AltID string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (w wireUser) valid() bool {
	return w.ID != "" || w.AltID != "" || w.Email != "" || w.Name != ""
}

func (w wireUser) toUser() model.User {
	id := w.ID
	if id == "" {
		id = w.AltID
	}
	return model.User{ID: id, Name: w.Name, Email: w.Email}
}

func decodeUser(raw json.RawMessage) (model.User, error) {
	rules := []func(json.RawMessage) (wireUser, bool){
		userUnder("user"),
		userUnder("data"),
		userFlat,
	}
	for _, rule := range rules {
		if w, ok := rule(raw); ok {
			return w.toUser(), nil
		}
	}
	return model.User{}, &DecodeError{Cause: errors.New("no user fields in payload")}
}

func userUnder(key string) func(json.RawMessage) (wireUser, bool) {
	return func(raw json.RawMessage) (wireUser, bool) {
		var env map[string]json.RawMessage
		if err := json.Unmarshal(raw, &env); err != nil {
			return wireUser{}, false
		}
		inner, ok := env[key]
		if !ok {
			return wireUser{}, false
		}
		return userFlat(inner)
	}
}

func userFlat(raw json.RawMessage) (wireUser, bool) {
	var w wireUser
	if err := json.Unmarshal(raw, &w); err != nil {
		return wireUser{}, false
	}
	return w, w.valid()
}

type wireItem struct {
	ID        string `json:"id"`
	AltID     string `json:"_id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Completed bool   `json:"completed"`
}

func (w wireItem) valid() bool { return w.ID != "" || w.AltID != "" || w.Name != "" }

func (w wireItem) toItem() model.GroceryItem {
	id := w.ID
	if id == "" {
		id = w.AltID
	}
	return model.GroceryItem{ID: id, Name: w.Name, Category: w.Category, Completed: w.Completed}
}

func decodeItems(raw json.RawMessage) ([]model.GroceryItem, error) {
	var bare []wireItem
	if err := json.Unmarshal(raw, &bare); err == nil {
		return toItems(bare), nil
	}
	var env struct {
		Items []wireItem `json:"items"`
		Data  []wireItem `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err == nil {
		if env.Items != nil {
			return toItems(env.Items), nil
		}
		if env.Data != nil {
			return toItems(env.Data), nil
		}
	}
	return nil, &DecodeError{Cause: errors.New("no item collection in payload")}
}

func toItems(in []wireItem) []model.GroceryItem {
	out := make([]model.GroceryItem, 0, len(in))
	for _, w := range in {
		out = append(out, w.toItem())
	}
	return out
}

func decodeItem(raw json.RawMessage) (model.GroceryItem, error) {
	rules := []func(json.RawMessage) (wireItem, bool){
		itemUnder("data"),
		itemUnder("item"),
		itemFlat,
	}
	for _, rule := range rules {
		if w, ok := rule(raw); ok {
			return w.toItem(), nil
		}
	}
	return model.GroceryItem{}, &DecodeError{Cause: errors.New("no item fields in payload")}
}

func itemUnder(key string) func(json.RawMessage) (wireItem, bool) {
	return func(raw json.RawMessage) (wireItem, bool) {
		var env map[string]json.RawMessage
		if err := json.Unmarshal(raw, &env); err != nil {
			return wireItem{}, false
		}
		inner, ok := env[key]
		if !ok {
			return wireItem{}, false
		}
		return itemFlat(inner)
	}
}

func itemFlat(raw json.RawMessage) (wireItem, bool) {
	var w wireItem
	if err := json.Unmarshal(raw, &w); err != nil {
		return wireItem{}, false
	}
	return w, w.valid()
}

func decodeCategories(raw json.RawMessage) ([]string, error) {
	var bare []string
	if err := json.Unmarshal(raw, &bare); err == nil {
		return bare, nil
	}
	var env struct {
		Categories []string `json:"categories"`
		Data       []string `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err == nil {
		if env.Categories != nil {
			return env.Categories, nil
		}
		if env.Data != nil {
			return env.Data, nil
		}
	}
	return nil, &DecodeError{Cause: errors.New("no category list in payload")}
}
