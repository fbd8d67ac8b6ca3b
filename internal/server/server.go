package server

// Server joins the HTTP handlers of the status API.
type Server struct {
	StatusServer
	GameServer
}

func NewServer(
	statusServer StatusServer,
	gameServer GameServer,
) Server {
	return Server{
		StatusServer: statusServer,
		GameServer:   gameServer,
	}
}
