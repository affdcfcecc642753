package config

type BootstrapConfig interface {
	GetRootUser() string
	GetRootPassword() string
	GetRecreateRoot() bool
}

type Bootstrap struct {
	src source
}

var _ BootstrapConfig = Bootstrap{}

func (b Bootstrap) GetRootUser() string {
	return b.src.get("ROOT_USER", "root")
}

func (b Bootstrap) GetRootPassword() string {
	return b.src.get("ROOT_PASSWORD", "root")
}

func (b Bootstrap) GetRecreateRoot() bool {
	return b.src.getBool("RECREATE_ROOT", false)
}
