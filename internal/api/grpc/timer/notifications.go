package timer

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/soccer-timer/internal/service/notification"
)

// Field names of the ListNotifications reply.
const (
	fieldNotifications = "notifications"
	fieldID            = "id"
	fieldChannel       = "channel"
	fieldTitle         = "title"
	fieldText          = "text"
	fieldPriority      = "priority"
	fieldOngoing       = "ongoing"
	fieldActions       = "actions"
	fieldLabel         = "label"
	fieldCommand       = "command"
)

// EncodeNotifications packs the tray contents into a Struct reply.
func EncodeNotifications(list []notification.Notification) (*structpb.Struct, error) {
	items := make([]any, 0, len(list))

	for _, n := range list {
		actions := make([]any, 0, len(n.Actions))
		for _, a := range n.Actions {
			actions = append(actions, map[string]any{
				fieldLabel:   a.Label,
				fieldCommand: a.Command,
			})
		}

		items = append(items, map[string]any{
			fieldID:       n.ID,
			fieldChannel:  n.ChannelID,
			fieldTitle:    n.Title,
			fieldText:     n.Text,
			fieldPriority: int(n.Priority),
			fieldOngoing:  n.Ongoing,
			fieldActions:  actions,
		})
	}

	reply, err := structpb.NewStruct(map[string]any{fieldNotifications: items})
	if err != nil {
		return nil, fmt.Errorf("build reply: %w", err)
	}

	return reply, nil
}

// DecodeNotifications unpacks a ListNotifications reply. Malformed entries are skipped.
func DecodeNotifications(reply *structpb.Struct) []notification.Notification {
	items := reply.GetFields()[fieldNotifications].GetListValue().GetValues()
	result := make([]notification.Notification, 0, len(items))

	for _, item := range items {
		fields := item.GetStructValue().GetFields()
		if fields == nil {
			continue
		}

		n := notification.Notification{
			ID:        int(fields[fieldID].GetNumberValue()),
			ChannelID: fields[fieldChannel].GetStringValue(),
			Title:     fields[fieldTitle].GetStringValue(),
			Text:      fields[fieldText].GetStringValue(),
			Priority:  notification.Priority(int(fields[fieldPriority].GetNumberValue())),
			Ongoing:   fields[fieldOngoing].GetBoolValue(),
		}

		for _, action := range fields[fieldActions].GetListValue().GetValues() {
			af := action.GetStructValue().GetFields()
			n.Actions = append(n.Actions, notification.Action{
				Label:   af[fieldLabel].GetStringValue(),
				Command: af[fieldCommand].GetStringValue(),
			})
		}

		result = append(result, n)
	}

	return result
}
