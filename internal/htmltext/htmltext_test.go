package htmltext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "empty",
			in:   "   ",
			want: "",
		},
		{
			name: "plain text passes through",
			in:   "just   some  text",
			want: "just some text",
		},
		{
			name: "paragraphs become lines",
			in:   "<p>first</p><p>second</p>",
			want: "first\nsecond",
		},
		{
			name: "list items get bullets",
			in:   "<p>Stack:</p><ul><li>Go</li><li>PostgreSQL</li></ul>",
			want: "Stack:\n- Go\n- PostgreSQL",
		},
		{
			name: "br breaks line",
			in:   "one<br>two",
			want: "one\ntwo",
		},
		{
			name: "inline markup is stripped",
			in:   "<p>We need a <strong>Go</strong> developer</p>",
			want: "We need a Go developer",
		},
		{
			name: "non-breaking spaces collapse",
			in:   "<p>salary\u00a0100\u00a0000</p>",
			want: "salary 100 000",
		},
		{
			name: "blank lines dropped",
			in:   "<p>a</p><p>  </p><p>b</p>",
			want: "a\nb",
		},
		{
			name: "headings become lines",
			in:   "<h2>Duties</h2><div>write code</div>",
			want: "Duties\nwrite code",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.in))
		})
	}
}
