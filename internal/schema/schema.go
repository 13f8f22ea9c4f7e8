// Package schema declares the scouting report field schema: the fixed,
// ordered list of evaluation fields shared by the create and update paths.
// The ordering is the wire contract between client form fields and database
// columns and must match the scouting_reports table definition exactly.
// Column lists, placeholder strings and the UPDATE set clause are all derived
// from this single declaration at startup so the two paths cannot drift.
package schema

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind classifies how a field value is parsed and bound.
type Kind int

const (
	// Text fields are stored verbatim.
	Text Kind = iota
	// Int fields accept JSON numbers or numeric strings.
	Int
	// Date fields accept YYYY-MM-DD (an RFC 3339 timestamp prefix is tolerated,
	// since some clients echo back values they previously received).
	Date
)

// Field describes one scouting report column.
type Field struct {
	Name string
	Kind Kind
}

// Report is the ordered field schema. Grouped the way the evaluation form is:
// scout/event metadata, player information, physical tools, hitting, running,
// fielding, pitching, makeup, and development planning.
var Report = []Field{
	{Name: "scout_name"},
	{Name: "scout_date", Kind: Date},
	{Name: "event"},
	{Name: "league_organization"},
	{Name: "player_name"},
	{Name: "primary_position"},
	{Name: "jersey_number"},
	{Name: "date_of_birth", Kind: Date},
	{Name: "age", Kind: Int},
	{Name: "height"},
	{Name: "weight"},
	{Name: "bats"},
	{Name: "throws"},
	{Name: "team"},
	{Name: "parent_guardian"},
	{Name: "contact"},
	{Name: "build"},
	{Name: "coordination"},
	{Name: "athleticism"},
	{Name: "motor_skills"},
	{Name: "growth_projection"},
	{Name: "stance_setup"},
	{Name: "swing_mechanics"},
	{Name: "contact_ability"},
	{Name: "power_potential"},
	{Name: "plate_discipline"},
	{Name: "bat_speed"},
	{Name: "approach"},
	{Name: "bunting"},
	{Name: "speed"},
	{Name: "base_running_iq"},
	{Name: "stealing_ability"},
	{Name: "first_step"},
	{Name: "turns"},
	{Name: "fielding_readiness"},
	{Name: "glove_work"},
	{Name: "footwork"},
	{Name: "arm_strength"},
	{Name: "arm_accuracy"},
	{Name: "range_field"},
	{Name: "game_awareness"},
	{Name: "positions_played"},
	{Name: "fastball_mph", Kind: Int},
	{Name: "control_pitching"},
	{Name: "breaking_ball"},
	{Name: "changeup"},
	{Name: "delivery"},
	{Name: "mound_presence"},
	{Name: "strikes"},
	{Name: "game_understanding"},
	{Name: "coachability"},
	{Name: "effort_level"},
	{Name: "competitiveness"},
	{Name: "teamwork"},
	{Name: "focus_attention"},
	{Name: "leadership"},
	{Name: "biggest_strengths"},
	{Name: "improvement_areas"},
	{Name: "recommended_focus"},
	{Name: "current_level"},
	{Name: "development_potential"},
	{Name: "recommended_next_steps"},
	{Name: "playing_time_recommendation"},
	{Name: "position_projection"},
	{Name: "additional_training"},
	{Name: "work_at_home"},
	{Name: "positive_reinforcement"},
	{Name: "notes_observations"},
	{Name: "next_evaluation_date", Kind: Date},
	{Name: "followup_items"},
}

// Derived SQL fragments, computed once at startup.
var (
	columnList      string
	insertColumns   string
	insertArgs      string
	updateSetClause string
)

func init() {
	names := make([]string, len(Report))
	for i, f := range Report {
		names[i] = f.Name
	}
	columnList = strings.Join(names, ", ")

	// INSERT binds user_id and group_id as $1/$2 ahead of the field values.
	insertColumns = "user_id, group_id, " + columnList
	ph := make([]string, len(Report)+2)
	for i := range ph {
		ph[i] = "$" + strconv.Itoa(i+1)
	}
	insertArgs = strings.Join(ph, ", ")

	set := make([]string, len(Report))
	for i, f := range Report {
		set[i] = f.Name + " = $" + strconv.Itoa(i+1)
	}
	updateSetClause = strings.Join(set, ", ")
}

// NumFields returns the number of fields in the report schema.
func NumFields() int { return len(Report) }

// ColumnList returns the comma-separated field columns in contract order.
func ColumnList() string { return columnList }

// InsertColumns returns the INSERT column list: user_id, group_id, then the
// field columns.
func InsertColumns() string { return insertColumns }

// InsertPlaceholders returns the matching $1..$n placeholder list.
func InsertPlaceholders() string { return insertArgs }

// UpdateSetClause returns "col = $1, ..." for all field columns, leaving the
// next placeholder positions free for the WHERE clause.
func UpdateSetClause() string { return updateSetClause }

// FieldError reports a payload value that does not fit its declared kind.
// The message is safe to return to the client.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid value for %s: %s", e.Field, e.Reason)
}

// Normalize extracts the schema fields from a decoded JSON payload and
// returns their bound values in contract order. Absent fields and empty
// strings become nil (stored as NULL). Keys outside the schema are ignored,
// so clients may send extra data without effect. user_id and group_id are
// deliberately not part of the schema; ownership always comes from the
// session, never from the payload.
func Normalize(payload map[string]interface{}) ([]interface{}, error) {
	values := make([]interface{}, len(Report))
	for i, f := range Report {
		raw, ok := payload[f.Name]
		if !ok || raw == nil {
			continue
		}
		v, err := coerce(f, raw)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

func coerce(f Field, raw interface{}) (interface{}, error) {
	switch f.Kind {
	case Int:
		return coerceInt(f.Name, raw)
	case Date:
		return coerceDate(f.Name, raw)
	default:
		return coerceText(f.Name, raw)
	}
}

func coerceText(name string, raw interface{}) (interface{}, error) {
	switch v := raw.(type) {
	case string:
		if v == "" {
			return nil, nil
		}
		return v, nil
	case float64:
		// Numeric input into a text field is tolerated; forms send everything
		// as strings but API callers may not.
		if v == math.Trunc(v) {
			return strconv.FormatInt(int64(v), 10), nil
		}
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return nil, &FieldError{Field: name, Reason: "expected a string"}
	}
}

func coerceInt(name string, raw interface{}) (interface{}, error) {
	switch v := raw.(type) {
	case float64:
		if v != math.Trunc(v) {
			return nil, &FieldError{Field: name, Reason: "expected a whole number"}
		}
		return int64(v), nil
	case string:
		if v == "" {
			return nil, nil
		}
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil, &FieldError{Field: name, Reason: "expected a whole number"}
		}
		return n, nil
	default:
		return nil, &FieldError{Field: name, Reason: "expected a whole number"}
	}
}

func coerceDate(name string, raw interface{}) (interface{}, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, &FieldError{Field: name, Reason: "expected a YYYY-MM-DD date"}
	}
	if s == "" {
		return nil, nil
	}
	if len(s) > 10 {
		s = s[:10]
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, &FieldError{Field: name, Reason: "expected a YYYY-MM-DD date"}
	}
	return t, nil
}
