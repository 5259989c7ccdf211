package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildEventSearch(t *testing.T) {
	tests := []struct {
		name      string
		filter    EventSearchFilter
		wantWhere string
		wantArgs  []interface{}
	}{
		{
			name:      "empty filter still restricts to upcoming events",
			filter:    EventSearchFilter{},
			wantWhere: "start_date > NOW()",
			wantArgs:  []interface{}{},
		},
		{
			name:      "location only",
			filter:    EventSearchFilter{Location: "Berlin"},
			wantWhere: "start_date > NOW() AND location = $1",
			wantArgs:  []interface{}{"Berlin"},
		},
		{
			name:      "title search uses a contains match",
			filter:    EventSearchFilter{TitleSearch: "jazz"},
			wantWhere: "start_date > NOW() AND title ILIKE $1",
			wantArgs:  []interface{}{"%jazz%"},
		},
		{
			name: "all filters keep placeholder order",
			filter: EventSearchFilter{
				Location:       "Berlin",
				Category:       "music",
				MaxPeopleBelow: 100,
				MinPrice:       10,
				MaxPrice:       500,
				TitleSearch:    "night",
			},
			wantWhere: "start_date > NOW() AND location = $1 AND category = $2" +
				" AND max_people < $3 AND ticket_price > $4 AND ticket_price < $5 AND title ILIKE $6",
			wantArgs: []interface{}{"Berlin", "music", 100, int64(10), int64(500), "%night%"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := buildEventSearch(tt.filter)
			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}
