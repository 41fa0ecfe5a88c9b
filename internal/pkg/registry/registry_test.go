package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeModule struct {
	name     string
	priority int
	order    *[]string
}

func (m fakeModule) Name() string  { return m.name }
func (m fakeModule) Priority() int { return m.priority }
func (m fakeModule) Init(*ModuleContext) error {
	*m.order = append(*m.order, m.name)
	return nil
}

func TestInitModules_Order(t *testing.T) {
	saved := moduleRegistry
	moduleRegistry = make(map[string]Module)
	defer func() { moduleRegistry = saved }()

	var order []string
	Register(fakeModule{name: "post", priority: 20, order: &order})
	Register(fakeModule{name: "user", priority: 10, order: &order})
	Register(fakeModule{name: "comment", priority: 20, order: &order})

	assert.NoError(t, InitModules(&ModuleContext{}))
	assert.Equal(t, []string{"user", "comment", "post"}, order)
}
