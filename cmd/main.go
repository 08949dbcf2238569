package main

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/gabrielnatan/petinova-2-sub003/internal/auditoria"
	"github.com/gabrielnatan/petinova-2-sub003/internal/auth"
	"github.com/gabrielnatan/petinova-2-sub003/internal/clinica"
	"github.com/gabrielnatan/petinova-2-sub003/internal/config"
	"github.com/gabrielnatan/petinova-2-sub003/internal/consulta"
	"github.com/gabrielnatan/petinova-2-sub003/internal/estoque"
	"github.com/gabrielnatan/petinova-2-sub003/internal/fornecedor"
	"github.com/gabrielnatan/petinova-2-sub003/internal/pet"
	"github.com/gabrielnatan/petinova-2-sub003/internal/ratelimit"
	"github.com/gabrielnatan/petinova-2-sub003/internal/tutor"
	"github.com/gabrielnatan/petinova-2-sub003/internal/usuario"
	"github.com/gabrielnatan/petinova-2-sub003/internal/utils/db"
	"github.com/gabrielnatan/petinova-2-sub003/internal/whatsapp"
)

func main() {
	logger := zap.Must(zap.NewProduction())
	defer logger.Sync()

	cfg := config.Carregar()

	database, err := db.GetDB(cfg)
	if err != nil {
		logger.Fatal("erro ao conectar no banco", zap.Error(err))
	}

	// AutoMigrate para todos os modelos
	if err := database.AutoMigrate(
		&clinica.Clinica{},
		&usuario.Usuario{},
		&tutor.Tutor{},
		&pet.Pet{},
		&consulta.Consulta{},
		&fornecedor.Fornecedor{},
		&estoque.Produto{},
		&estoque.MovimentacaoEstoque{},
		&whatsapp.Mensagem{},
		&auth.RefreshToken{},
		&auth.CodigoBackup{},
		&auditoria.Evento{},
	); err != nil {
		logger.Fatal("erro no AutoMigrate", zap.Error(err))
	}

	// Serviços
	jwtManager, err := auth.NewJWTManager(cfg.JWTSecret, cfg.AccessTTL)
	if err != nil {
		logger.Fatal("erro na configuração do JWT", zap.Error(err))
	}
	registrador := auditoria.NewRegistrador(database, logger)
	servico2FA := auth.NewServico2FA("Petinova")

	usuarioRepo := usuario.NewRepository(database)
	contaStore := usuario.NewContaStore(usuarioRepo)
	refreshRepo := auth.NewRefreshRepository(database)
	codigosRepo := auth.NewCodigoBackupRepository(database)

	mensagensRepo := whatsapp.NewRepository(database)
	var publicador whatsapp.Publicador = whatsapp.PublicadorNulo{}
	if conn, err := amqp.Dial(cfg.RabbitURL); err != nil {
		logger.Warn("RabbitMQ indisponível, envio de WhatsApp desabilitado", zap.Error(err))
	} else if pub, err := whatsapp.NewPublicador(conn, logger); err != nil {
		logger.Warn("erro ao preparar fila de WhatsApp", zap.Error(err))
	} else {
		publicador = pub
		consumidor := whatsapp.NewConsumer(cfg.RabbitURL, cfg.WhatsAppAPIURL, cfg.WhatsAppAPIToken, mensagensRepo, logger)
		go consumidor.Iniciar()
	}

	// Handlers
	authHandler := auth.NewHandler(contaStore, refreshRepo, codigosRepo, jwtManager, servico2FA, registrador, logger, time.Duration(cfg.RefreshTTLDias)*24*time.Hour, cfg.CookieSecure)
	usuarioHandler := usuario.NewHandler(usuarioRepo, refreshRepo, codigosRepo, servico2FA, registrador, logger)
	clinicaHandler := clinica.NewHandler(clinica.NewRepository(database))
	tutorRepo := tutor.NewRepository(database)
	tutorHandler := tutor.NewHandler(tutorRepo)
	petRepo := pet.NewRepository(database)
	petHandler := pet.NewHandler(petRepo, tutorRepo)
	consultaHandler := consulta.NewHandler(consulta.NewRepository(database), petRepo, tutorRepo, mensagensRepo, publicador, logger)
	fornecedorHandler := fornecedor.NewHandler(fornecedor.NewRepository(database))
	estoqueHandler := estoque.NewHandler(estoque.NewRepository(database))
	webhookHandler := whatsapp.NewWebhookHandler(cfg.WhatsAppAppSecret, cfg.WhatsAppVerifyToken, mensagensRepo, registrador, logger)
	whatsappHandler := whatsapp.NewHandler(mensagensRepo, publicador, logger)

	limitador := ratelimit.NewLimitador(
		ratelimit.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword),
		10, time.Minute, "rl:login", logger,
	)

	// Router
	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	}).Methods("GET")

	// Rotas públicas de autenticação (com rate limit nas de credencial)
	r.Handle("/api/auth/login", limitador.Middleware(http.HandlerFunc(authHandler.Login))).Methods("POST")
	r.Handle("/api/auth/2fa/verificar", limitador.Middleware(http.HandlerFunc(authHandler.VerificarSegundoFator))).Methods("POST")
	r.HandleFunc("/api/auth/refresh", authHandler.Refresh).Methods("POST")
	r.HandleFunc("/api/auth/logout", authHandler.Logout).Methods("POST")

	// Webhook do WhatsApp (assinado, sem sessão)
	r.HandleFunc("/api/whatsapp/webhook", webhookHandler.Verificar).Methods("GET")
	r.HandleFunc("/api/whatsapp/webhook", webhookHandler.Receber).Methods("POST")

	// Rotas protegidas
	protegido := r.PathPrefix("/api").Subrouter()
	protegido.Use(auth.MiddlewareAutenticacao(jwtManager, contaStore))
	admin := auth.RequireRole(usuario.RoleAdmin)

	// Clínica
	protegido.HandleFunc("/clinica", clinicaHandler.MinhaClinica).Methods("GET")
	protegido.Handle("/clinica", admin(http.HandlerFunc(clinicaHandler.AtualizarClinica))).Methods("PUT")

	// Equipe
	protegido.Handle("/usuarios", admin(http.HandlerFunc(usuarioHandler.CriarUsuario))).Methods("POST")
	protegido.HandleFunc("/usuarios", usuarioHandler.ListarUsuarios).Methods("GET")
	protegido.HandleFunc("/usuarios/me", usuarioHandler.Me).Methods("GET")
	protegido.HandleFunc("/usuarios/me/senha", usuarioHandler.AlterarSenha).Methods("PUT")
	protegido.HandleFunc("/usuarios/me/2fa", usuarioHandler.Iniciar2FA).Methods("POST")
	protegido.HandleFunc("/usuarios/me/2fa/ativar", usuarioHandler.Ativar2FA).Methods("POST")
	protegido.HandleFunc("/usuarios/{id}", usuarioHandler.BuscarPorID).Methods("GET")
	protegido.HandleFunc("/usuarios/{id}", usuarioHandler.AtualizarUsuario).Methods("PUT")
	protegido.Handle("/usuarios/{id}", admin(http.HandlerFunc(usuarioHandler.DesativarUsuario))).Methods("DELETE")
	protegido.Handle("/usuarios/{id}/senha/resetar", admin(http.HandlerFunc(usuarioHandler.ResetarSenha))).Methods("POST")

	// Tutores
	protegido.HandleFunc("/tutores", tutorHandler.CriarTutor).Methods("POST")
	protegido.HandleFunc("/tutores", tutorHandler.ListarTutores).Methods("GET")
	protegido.HandleFunc("/tutores/{id}", tutorHandler.BuscarPorID).Methods("GET")
	protegido.HandleFunc("/tutores/{id}", tutorHandler.AtualizarTutor).Methods("PUT")
	protegido.HandleFunc("/tutores/{id}", tutorHandler.RemoverTutor).Methods("DELETE")

	// Pets
	protegido.HandleFunc("/pets", petHandler.CriarPet).Methods("POST")
	protegido.HandleFunc("/pets", petHandler.ListarPets).Methods("GET")
	protegido.HandleFunc("/pets/{id}", petHandler.BuscarPorID).Methods("GET")
	protegido.HandleFunc("/pets/{id}", petHandler.AtualizarPet).Methods("PUT")
	protegido.HandleFunc("/pets/{id}", petHandler.RemoverPet).Methods("DELETE")

	// Consultas
	protegido.HandleFunc("/consultas", consultaHandler.CriarConsulta).Methods("POST")
	protegido.HandleFunc("/consultas", consultaHandler.ListarConsultas).Methods("GET")
	protegido.HandleFunc("/consultas/{id}", consultaHandler.BuscarPorID).Methods("GET")
	protegido.HandleFunc("/consultas/{id}/iniciar", consultaHandler.Iniciar).Methods("POST")
	protegido.HandleFunc("/consultas/{id}/concluir", consultaHandler.Concluir).Methods("POST")
	protegido.HandleFunc("/consultas/{id}/cancelar", consultaHandler.Cancelar).Methods("POST")

	// Fornecedores
	protegido.HandleFunc("/fornecedores", fornecedorHandler.CriarFornecedor).Methods("POST")
	protegido.HandleFunc("/fornecedores", fornecedorHandler.ListarFornecedores).Methods("GET")
	protegido.HandleFunc("/fornecedores/{id}", fornecedorHandler.AtualizarFornecedor).Methods("PUT")
	protegido.HandleFunc("/fornecedores/{id}", fornecedorHandler.RemoverFornecedor).Methods("DELETE")

	// Estoque
	protegido.HandleFunc("/produtos", estoqueHandler.CriarProduto).Methods("POST")
	protegido.HandleFunc("/produtos", estoqueHandler.ListarProdutos).Methods("GET")
	protegido.HandleFunc("/produtos/{id}", estoqueHandler.BuscarProduto).Methods("GET")
	protegido.HandleFunc("/produtos/{id}", estoqueHandler.AtualizarProduto).Methods("PUT")
	protegido.HandleFunc("/produtos/{id}/movimentacoes", estoqueHandler.Movimentar).Methods("POST")
	protegido.HandleFunc("/produtos/{id}/movimentacoes", estoqueHandler.ListarMovimentacoes).Methods("GET")

	// Mensagens (equipe)
	protegido.HandleFunc("/whatsapp/mensagens", whatsappHandler.EnviarMensagem).Methods("POST")
	protegido.HandleFunc("/whatsapp/mensagens", whatsappHandler.ListarConversa).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigens,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	logger.Info("servidor ouvindo", zap.String("porta", cfg.Porta))
	if err := http.ListenAndServe(":"+cfg.Porta, c.Handler(r)); err != nil {
		logger.Fatal("servidor encerrado", zap.Error(err))
	}
}
