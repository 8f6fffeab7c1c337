package models

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestFlexString_Unmarshal(t *testing.T) {
	var v struct {
		A FlexString `json:"a"`
		B FlexString `json:"b"`
		C FlexString `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"12","b":34,"c":null}`), &v))
	require.Equal(t, FlexString("12"), v.A)
	require.Equal(t, FlexString("34"), v.B)
	require.Equal(t, FlexString(""), v.C)

	var bad FlexString
	require.Error(t, json.Unmarshal([]byte(`{"x":1}`), &bad))
}

func TestCount_StringOrNumber(t *testing.T) {
	var r FormListResponse
	require.NoError(t, json.Unmarshal([]byte(`{"count":"25","next":null,"previous":null,"results":[]}`), &r))
	require.Equal(t, Count(25), r.Count)
	require.Equal(t, 2, r.TotalPages())

	require.NoError(t, json.Unmarshal([]byte(`{"count":7}`), &r))
	require.Equal(t, Count(7), r.Count)

	b, err := json.Marshal(Count(3))
	require.NoError(t, err)
	require.JSONEq(t, `"3"`, string(b))

	var c Count
	require.Error(t, json.Unmarshal([]byte(`"many"`), &c))
}

func TestTotalPages(t *testing.T) {
	cases := map[int]int{0: 0, 1: 1, 20: 1, 21: 2, 40: 2, 41: 3, -5: 0}
	for count, want := range cases {
		require.Equal(t, want, TotalPages(count), "count=%d", count)
	}
}

func TestParseAbsenceType(t *testing.T) {
	a, err := ParseAbsenceType(" sickness ")
	require.NoError(t, err)
	require.Equal(t, AbsenceSickness, a)

	_, err = ParseAbsenceType("holiday")
	require.Error(t, err)
}

func TestSubmittedFormRecord_WireFormat(t *testing.T) {
	in := `{"id":5,"driver":"3","date":"2025-01-10","time":"08:15:00","status":true,
		"load":"12","mileage":340,"delivery_areas":["North","South"],
		"absence_type":"MAINTENANCE","otherReason":""}`

	var rec SubmittedFormRecord
	require.NoError(t, json.Unmarshal([]byte(in), &rec))

	want := SubmittedFormRecord{
		ID:     "5",
		Driver: "3",
		StatusForm: StatusForm{
			Date:          "2025-01-10",
			Time:          "08:15:00",
			Status:        true,
			Load:          "12",
			Mileage:       "340",
			DeliveryAreas: []string{"North", "South"},
			AbsenceType:   AbsenceMaintenance,
		},
	}
	if diff := cmp.Diff(want, rec); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}

	out, err := json.Marshal(rec.StatusForm)
	require.NoError(t, err)
	require.JSONEq(t, `{"date":"2025-01-10","time":"08:15:00","status":true,"load":"12",
		"mileage":"340","delivery_areas":["North","South"],"absence_type":"MAINTENANCE",
		"otherReason":""}`, string(out))
}

func TestStatusForm_Clone(t *testing.T) {
	f := NewStatusForm("2025-01-10", "08:00:00")
	f.DeliveryAreas = append(f.DeliveryAreas, "North")
	c := f.Clone()
	c.DeliveryAreas[0] = "South"
	require.Equal(t, "North", f.DeliveryAreas[0])
	require.Equal(t, "Active", f.StatusLabel())
	require.Equal(t, AbsenceMaintenance, f.AbsenceType)
}

func TestDriverSession(t *testing.T) {
	require.NoError(t, Anonymous().Validate())
	require.ErrorIs(t, DriverSession{IsAuthenticated: true}.Validate(), ErrInvalidSession)

	s := Authenticated(DriverUser{FirstName: "Anna", LastName: "Ozola"})
	require.NoError(t, s.Validate())
	require.Equal(t, "Anna", s.DisplayName())

	b, err := json.Marshal(s)
	require.NoError(t, err)
	require.JSONEq(t, `{"isAuthenticated":true,"user":{"firstName":"Anna","lastName":"Ozola","dateOfBirth":"","accessCode":""}}`, string(b))
}

func TestCredentials_Normalize(t *testing.T) {
	c := Credentials{FirstName: " Anna ", LastName: "Ozola\t", DateOfBirth: "1990-01-02 ", AccessCode: " ABCD1234"}.Normalize()
	require.Equal(t, Credentials{FirstName: "Anna", LastName: "Ozola", DateOfBirth: "1990-01-02", AccessCode: "ABCD1234"}, c)

	b, err := json.Marshal(c)
	require.NoError(t, err)
	require.JSONEq(t, `{"first_name":"Anna","last_name":"Ozola","date_of_birth":"1990-01-02","access_code":"ABCD1234"}`, string(b))
	require.Equal(t, "Anna", c.User().FirstName)
}
