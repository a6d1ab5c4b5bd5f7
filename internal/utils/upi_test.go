package utils

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaiseToRupees(t *testing.T) {
	cases := []struct {
		paise int64
		want  string
	}{
		{45000, "450.00"},
		{45, "0.45"},
		{5, "0.05"},
		{0, "0.00"},
		{100, "1.00"},
		{309999, "3099.99"},
		{-4500, "-45.00"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, PaiseToRupees(tc.paise))
	}
}

func TestUPIDeepLink(t *testing.T) {
	link := UPIDeepLink("carvo@upi", "Carvo", 45000, "Carvo order")
	require.True(t, strings.HasPrefix(link, "upi://pay?"))

	q, err := url.ParseQuery(strings.TrimPrefix(link, "upi://pay?"))
	require.NoError(t, err)
	assert.Equal(t, "carvo@upi", q.Get("pa"))
	assert.Equal(t, "Carvo", q.Get("pn"))
	assert.Equal(t, "450.00", q.Get("am"))
	assert.Equal(t, "INR", q.Get("cu"))
	assert.Equal(t, "Carvo order", q.Get("tn"))
}

func TestUPIDeepLinkNoNote(t *testing.T) {
	link := UPIDeepLink("carvo@upi", "Carvo", 100, "")
	q, err := url.ParseQuery(strings.TrimPrefix(link, "upi://pay?"))
	require.NoError(t, err)
	assert.False(t, q.Has("tn"))
	assert.Equal(t, "1.00", q.Get("am"))
}
