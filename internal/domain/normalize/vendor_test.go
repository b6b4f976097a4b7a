package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVendor(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"AMAZON MARKETPLACE", "amazon marketplace"},
		{"Amazon.com", "amazon"},
		{"AMZN Mktp US*2K3LM4", "amazon"},
		{"Amazon Web Services, Inc.", "aws"},
		{"Acme Widgets, Inc.", "acme widgets"},
		{"Blue Bottle Coffee LLC", "blue bottle coffee"},
		{"Initech Corporation", "initech"},
		{"Coco Bakery Co.", "coco bakery"},
		{"UBER   *EATS", "uber eats"},
		{"UBER *TRIP", "uber"},
		{"WAL-MART #1234", "walmart"},
		{"Smith Laws Ltd", "smith laws"},
		{"WHOLEFDS MKT 10234", "whole foods"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Vendor(tt.input))
		})
	}
}

func TestVendor_SynonymOrderMatters(t *testing.T) {
	// "amazon web services" must win over the plainer amazon keys
	assert.Equal(t, "aws", Vendor("amazon web services amzn"))
	assert.Equal(t, "uber eats", Vendor("uber eats order"))
}

func TestVendor_SynonymKeysStartAtWord(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"AMZN*Mktp US", "amazon"},
		{"SQ *AMZN RESELLER", "amazon"},
		{"XAMZN TRADING", "xamzn trading"},
		{"Draws Studio", "draws studio"},
		{"AWS EMEA", "aws"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Vendor(tt.input))
		})
	}
}

func TestDisplayVendor(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"SQ *BLUE BOTTLE COFFEE 0421 OAKLAND", "Blue Bottle Coffee"},
		{"AMAZON MARKETPLACE", "Amazon Marketplace"},
		{"AMZN Mktp US*2K3LM4", "Amzn Mktp Us"},
		{"DELTA AIR   ATLANTA GA", "Delta Air"},
		{"12345", "12345"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayVendor(tt.input))
		})
	}
}
