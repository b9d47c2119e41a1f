package dashboard

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ActionType names a transition. It is the tag used in the JSON envelope.
type ActionType string

const (
	TypeCreateNewTab          ActionType = "tab/create"
	TypeDeleteTab             ActionType = "tab/delete"
	TypeUndoDeleteTab         ActionType = "tab/undo-delete"
	TypeRenameTab             ActionType = "tab/rename"
	TypeMoveTab               ActionType = "tab/move"
	TypeSelectTab             ActionType = "tab/select"
	TypeInitTabs              ActionType = "tab/init"
	TypeMoveDashCardToTab     ActionType = "dashcard/move-to-tab"
	TypeUndoMoveDashCardToTab ActionType = "dashcard/undo-move-to-tab"
	TypeAddDashCard           ActionType = "dashcard/add"
	TypeSetDashCardData       ActionType = "dashcard/set-data"
	TypeSaveCardsAndTabs      ActionType = "dashboard/save-cards-and-tabs"
	TypeInitialize            ActionType = "dashboard/initialize"
	TypeFetchDashboard        ActionType = "dashboard/fetch"
)

// Action is the closed set of transitions accepted by Reducer. Only types in
// this package implement it.
type Action interface {
	Type() ActionType
	sealed()
}

// CreateNewTab appends a tab, or bootstraps two tabs on a dashboard without
// tabs. TabID must come from a tab TempIDAllocator.
type CreateNewTab struct {
	TabID TabID `json:"tabId"`
}

// DeleteTab soft-deletes a tab and the dashcards on it.
type DeleteTab struct {
	TabID         TabID         `json:"tabId"`
	TabDeletionID TabDeletionID `json:"tabDeletionId"`
}

// UndoDeleteTab restores what DeleteTab with the same deletion id removed.
type UndoDeleteTab struct {
	TabDeletionID TabDeletionID `json:"tabDeletionId"`
}

type RenameTab struct {
	TabID TabID  `json:"tabId"`
	Name  string `json:"name"`
}

// MoveTab moves the source tab to the destination tab's position.
type MoveTab struct {
	SourceTabID      TabID `json:"sourceTabId"`
	DestinationTabID TabID `json:"destinationTabId"`
}

// SelectTab sets the selection without validating it.
type SelectTab struct {
	TabID *TabID `json:"tabId"`
}

// InitTabs selects the tab named by a URL slug, falling back to the first
// tab. An empty slug means no slug.
type InitTabs struct {
	Slug string `json:"slug,omitempty"`
}

type MoveDashCardToTab struct {
	DashCardID       DashCardID `json:"dashCardId"`
	DestinationTabID TabID      `json:"destinationTabId"`
}

// UndoMoveDashCardToTab puts a dashcard back where it was before a move.
type UndoMoveDashCardToTab struct {
	DashCardID    DashCardID `json:"dashCardId"`
	OriginalRow   int        `json:"originalRow"`
	OriginalCol   int        `json:"originalCol"`
	OriginalTabID TabID      `json:"originalTabId"`
}

// AddDashCard places a new client-local dashcard on a tab.
type AddDashCard struct {
	DashCardID DashCardID `json:"dashCardId"`
	CardID     CardID     `json:"cardId"`
	TabID      *TabID     `json:"tabId"`
	SizeX      int        `json:"size_x"`
	SizeY      int        `json:"size_y"`
}

type SetDashCardData struct {
	DashCardID DashCardID `json:"dashCardId"`
	Data       CardData   `json:"data"`
}

// SaveCardsAndTabs reconciles client-local ids with the ids the store
// assigned. Cards and Tabs are positionally aligned with the non-removed
// dashcards and tabs of the current dashboard.
type SaveCardsAndTabs struct {
	Cards []DashCard `json:"cards"`
	Tabs  []Tab      `json:"tabs"`
}

// Initialize is sent when a dashboard starts loading. A nil ClearCache
// means true.
type Initialize struct {
	ClearCache *bool `json:"clearCache,omitempty"`
}

// FetchDashboard loads (or reloads) a dashboard and its dashcards.
type FetchDashboard struct {
	Dashboard Dashboard  `json:"dashboard"`
	DashCards []DashCard `json:"dashcards"`
}

func (CreateNewTab) Type() ActionType          { return TypeCreateNewTab }
func (DeleteTab) Type() ActionType             { return TypeDeleteTab }
func (UndoDeleteTab) Type() ActionType         { return TypeUndoDeleteTab }
func (RenameTab) Type() ActionType             { return TypeRenameTab }
func (MoveTab) Type() ActionType               { return TypeMoveTab }
func (SelectTab) Type() ActionType             { return TypeSelectTab }
func (InitTabs) Type() ActionType              { return TypeInitTabs }
func (MoveDashCardToTab) Type() ActionType     { return TypeMoveDashCardToTab }
func (UndoMoveDashCardToTab) Type() ActionType { return TypeUndoMoveDashCardToTab }
func (AddDashCard) Type() ActionType           { return TypeAddDashCard }
func (SetDashCardData) Type() ActionType       { return TypeSetDashCardData }
func (SaveCardsAndTabs) Type() ActionType      { return TypeSaveCardsAndTabs }
func (Initialize) Type() ActionType            { return TypeInitialize }
func (FetchDashboard) Type() ActionType        { return TypeFetchDashboard }

func (CreateNewTab) sealed()          {}
func (DeleteTab) sealed()             {}
func (UndoDeleteTab) sealed()         {}
func (RenameTab) sealed()             {}
func (MoveTab) sealed()               {}
func (SelectTab) sealed()             {}
func (InitTabs) sealed()              {}
func (MoveDashCardToTab) sealed()     {}
func (UndoMoveDashCardToTab) sealed() {}
func (AddDashCard) sealed()           {}
func (SetDashCardData) sealed()       {}
func (SaveCardsAndTabs) sealed()      {}
func (Initialize) sealed()            {}
func (FetchDashboard) sealed()        {}

var decoders = map[ActionType]func(json.RawMessage) (Action, error){
	TypeCreateNewTab:          decodeAs[CreateNewTab],
	TypeDeleteTab:             decodeAs[DeleteTab],
	TypeUndoDeleteTab:         decodeAs[UndoDeleteTab],
	TypeRenameTab:             decodeAs[RenameTab],
	TypeMoveTab:               decodeAs[MoveTab],
	TypeSelectTab:             decodeAs[SelectTab],
	TypeInitTabs:              decodeAs[InitTabs],
	TypeMoveDashCardToTab:     decodeAs[MoveDashCardToTab],
	TypeUndoMoveDashCardToTab: decodeAs[UndoMoveDashCardToTab],
	TypeAddDashCard:           decodeAs[AddDashCard],
	TypeSetDashCardData:       decodeAs[SetDashCardData],
	TypeSaveCardsAndTabs:      decodeAs[SaveCardsAndTabs],
	TypeInitialize:            decodeAs[Initialize],
	TypeFetchDashboard:        decodeAs[FetchDashboard],
}

func decodeAs[T Action](raw json.RawMessage) (Action, error) {
	var a T
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Envelope carries an action through JSON as {"type": ..., "payload": ...}.
type Envelope struct {
	Action Action
}

type envelope struct {
	Type    ActionType      `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func (e Envelope) MarshalJSON() ([]byte, error) {
	if e.Action == nil {
		return nil, errors.New("dashboard: empty action envelope")
	}
	payload, err := json.Marshal(e.Action)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Type: e.Action.Type(), Payload: payload})
}

func (e *Envelope) UnmarshalJSON(data []byte) error {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	decode, ok := decoders[env.Type]
	if !ok {
		return fmt.Errorf("dashboard: unknown action type %q", env.Type)
	}
	a, err := decode(env.Payload)
	if err != nil {
		return fmt.Errorf("dashboard: decode %s: %w", env.Type, err)
	}
	e.Action = a
	return nil
}
