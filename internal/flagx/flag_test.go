package flagx

import (
	"reflect"
	"testing"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "separate value kept",
			args:    []string{"-a", ":8080", "-x", "junk"},
			allowed: []string{"-a"},
			want:    []string{"-a", ":8080"},
		},
		{
			name:    "equals form kept",
			args:    []string{"--config=conf.json", "-d", "dsn"},
			allowed: []string{"--config"},
			want:    []string{"--config=conf.json"},
		},
		{
			name:    "flag without value",
			args:    []string{"-v", "-a", ":9090"},
			allowed: []string{"-v"},
			want:    []string{"-v"},
		},
		{
			name:    "nothing allowed",
			args:    []string{"-a", "x"},
			allowed: []string{"-b"},
			want:    []string{},
		},
		{
			name:    "value looking like flag not consumed",
			args:    []string{"-a", "-d"},
			allowed: []string{"-a", "-d"},
			want:    []string{"-a", "-d"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := FilterArgs(tc.args, tc.allowed)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("FilterArgs(%v, %v) = %v, want %v", tc.args, tc.allowed, got, tc.want)
			}
		})
	}
}
