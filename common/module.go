package common

type Module string

const (
	ModuleStamp  Module = "stamp"
	ModuleFaucet Module = "faucet"
)

func (m Module) String() string {
	return string(m)
}
