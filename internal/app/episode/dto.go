package episode

import (
	"forager/internal/app/ports"
	"forager/internal/domain/forage"
	"forager/internal/domain/world"
)

type Request struct {
	World   ports.WorldSpec
	Targets []string
	Speed   world.Speed
}

type Response struct {
	Report forage.Report `json:"report"`
}
