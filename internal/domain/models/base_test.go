package models

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"community-console-service/pkg/logger"
)

func TestDate_UnmarshalLenient(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(os.Stderr) })

	cases := []struct {
		raw     string
		defined bool
	}{
		{`"1990-01-02"`, true},
		{`"1990-01-02T08:00:00Z"`, true},
		{`"02/01/1990"`, true},
		{`null`, false},
		{`""`, false},
		{`"02-01-1990"`, false},
		{`19900102`, false},
		{`true`, false},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			d := Date{Time: NewDate(2000, 1, 1).Time}
			require.NoError(t, json.Unmarshal([]byte(tc.raw), &d))
			assert.Equal(t, tc.defined, d.Defined())
		})
	}
	assert.Contains(t, buf.String(), `"02-01-1990"`)
}

func TestDate_FieldDoesNotFailRecord(t *testing.T) {
	var r struct {
		Name      string `json:"hoTen"`
		BirthDate *Date  `json:"ngaySinh"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"hoTen":"Tran Thi B","ngaySinh":"hom qua"}`), &r))
	assert.Equal(t, "Tran Thi B", r.Name)
	assert.False(t, r.BirthDate.Defined())
}
