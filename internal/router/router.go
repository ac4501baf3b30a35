package router

import (
	"time"

	"ananda/internal/config"
	"ananda/internal/handler"
	"ananda/internal/infra"
	"ananda/internal/middleware"
	"ananda/internal/model"
	"ananda/internal/repository"
	"ananda/internal/service"
	"ananda/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, smtpCB *infra.CircuitBreaker, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	clienteRepo := repository.NewClienteRepository(db)
	categoriaRepo := repository.NewCategoriaRepository(db)
	cajaRepo := repository.NewCajaRepository(db)
	ventaRepo := repository.NewVentaRepository(db)
	carritoRepo := repository.NewCarritoRepository(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg, rdb, dispatcher)
	productoSvc := service.NewProductoService(productoRepo)
	categoriaSvc := service.NewCategoriaService(categoriaRepo)
	clienteSvc := service.NewClienteService(clienteRepo, dispatcher)
	cajaSvc := service.NewCajaService(cajaRepo, time.Duration(cfg.CajaCacheTTLSeconds)*time.Second)
	carritoSvc := service.NewCarritoService(carritoRepo, productoRepo, clienteRepo)
	ventaSvc := service.NewVentaService(ventaRepo, cajaRepo, clienteRepo, productoRepo, carritoRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	productosH := handler.NewProductoHandler(productoSvc)
	categoriasH := handler.NewCategoriaHandler(categoriaSvc)
	clientesH := handler.NewClienteHandler(clienteSvc)
	cajaH := handler.NewCajaHandler(cajaSvc)
	carritoH := handler.NewCarritoHandler(carritoSvc)
	ventasH := handler.NewVentaHandler(ventaSvc, cfg.TicketStoragePath)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, smtpCB))

	auth := r.Group("/api/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
		auth.POST("/forgot-password", middleware.LoginRateLimiter(), authH.ForgotPassword)
		auth.POST("/reset-password", authH.ResetPassword)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	adminMW := middleware.RequireRole(model.RolAdministrador)
	api := r.Group("/api", jwtMW)
	{
		api.GET("/auth/me", authH.Me)
		api.POST("/auth/logout", authH.Logout)

		caja := api.Group("/caja")
		{
			caja.GET("/actual", cajaH.Actual)
			caja.POST("/abrir", cajaH.Abrir)
			caja.POST("/cerrar", cajaH.Cerrar)
			caja.POST("/marcar-controlada", adminMW, cajaH.MarcarControlada)
			caja.GET("/listar", cajaH.Listar)
			caja.GET("/:id", cajaH.Detalle)
		}

		carrito := api.Group("/carrito")
		{
			carrito.GET("", carritoH.Obtener)
			carrito.POST("/agregar", carritoH.Agregar)
			carrito.PUT("/cantidad", carritoH.ActualizarCantidad)
			carrito.DELETE("/:producto_id", carritoH.Eliminar)
			carrito.DELETE("", carritoH.Vaciar)
		}

		proceso := api.Group("/venta-proceso")
		{
			proceso.GET("", carritoH.Obtener)
			proceso.POST("/cliente", carritoH.SetCliente)
			proceso.POST("/descuento", carritoH.SetDescuento)
			proceso.POST("/metodo-pago", carritoH.SetMetodoPago)
			proceso.POST("/avanzar", carritoH.AvanzarPaso)
			proceso.POST("/reiniciar", carritoH.Reiniciar)
		}

		ventas := api.Group("/ventas")
		{
			ventas.POST("/procesar-completa", ventasH.ProcesarCompleta)
			ventas.GET("", ventasH.Listar)
			ventas.GET("/resumen", ventasH.Resumen)
			ventas.GET("/:id", ventasH.Detalle)
			ventas.GET("/:id/ticket", ventasH.Ticket)
		}

		clientes := api.Group("/clientes")
		{
			clientes.POST("", clientesH.Crear)
			clientes.GET("", clientesH.Listar)
			clientes.GET("/cumpleanos", clientesH.Cumpleanos)
			clientes.GET("/:id", clientesH.Obtener)
			clientes.PUT("/:id", clientesH.Actualizar)
			clientes.DELETE("/:id", clientesH.Eliminar)
			clientes.POST("/:id/saludar", clientesH.Saludar)
		}

		productos := api.Group("/productos")
		{
			productos.GET("", productosH.Listar)
			productos.GET("/:id", productosH.Detalle)
			productos.POST("", productosH.Crear)
			productos.PUT("/:id", productosH.Actualizar)
			productos.DELETE("/:id", productosH.Desactivar)
		}

		api.GET("/categorias", categoriasH.Listar)
		categorias := api.Group("/categorias", adminMW)
		{
			categorias.POST("", categoriasH.Crear)
			categorias.PUT("/:id", categoriasH.Actualizar)
			categorias.DELETE("/:id", categoriasH.Desactivar)
			categorias.POST("/:id/subcategorias", categoriasH.CrearSubcategoria)
			categorias.DELETE("/:id/subcategorias/:subcategoria_id", categoriasH.DesactivarSubcategoria)
		}

		usuarios := api.Group("/usuarios", adminMW)
		{
			usuarios.POST("", authH.CrearUsuario)
			usuarios.GET("", authH.ListarUsuarios)
			usuarios.PUT("/:id", authH.ActualizarUsuario)
			usuarios.DELETE("/:id", authH.DesactivarUsuario)
		}
	}

	// Swagger UI; only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
